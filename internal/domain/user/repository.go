package user

import "context"

// Repository describes user persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, id int64) (User, bool, error)
	ListByIDs(ctx context.Context, ids []int64) ([]User, error)
	Upsert(ctx context.Context, u User) error

	// ListRanked returns users ordered by the given points source descending,
	// ties broken by ascending id. A limit <= 0 means no limit.
	ListRanked(ctx context.Context, source PointsSource, limit int) ([]User, error)

	// IncrementPredictionsMade counts a user's first submission on a market.
	IncrementPredictionsMade(ctx context.Context, id int64) error

	ResetWeeklyPoints(ctx context.Context) error
}
