package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	// Create stores a new league. ErrNameTaken when the name is in use.
	Create(ctx context.Context, l League) error
	GetByID(ctx context.Context, id string) (League, bool, error)
	GetByName(ctx context.Context, name string) (League, bool, error)
	List(ctx context.Context) ([]League, error)
	ListByUser(ctx context.Context, userID int64) ([]League, error)

	// AddMember enrolls a user. ErrAlreadyMember on a duplicate join.
	AddMember(ctx context.Context, m Membership) error
	ListMembers(ctx context.Context, leagueID string) ([]Membership, error)

	// ListMembersRanked returns memberships ordered by points_in_league
	// descending, ties broken by ascending user id. A limit <= 0 means
	// no limit.
	ListMembersRanked(ctx context.Context, leagueID string, limit int) ([]Membership, error)
}
