package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/predictleague/prediction-league/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	items   map[string]league.League
	orders  []string
	members map[string][]league.Membership
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{
		items:   make(map[string]league.League),
		members: make(map[string][]league.Membership),
	}
}

func (r *LeagueRepository) Create(_ context.Context, l league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Name, l.Name) {
			return league.ErrNameTaken
		}
	}

	r.items[l.ID] = l
	r.orders = append(r.orders, l.ID)
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, id string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[id]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

func (r *LeagueRepository) GetByName(_ context.Context, name string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.items {
		if strings.EqualFold(l.Name, name) {
			return l, true, nil
		}
	}

	return league.League{}, false, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *LeagueRepository) ListByUser(_ context.Context, userID int64) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0)
	for _, id := range r.orders {
		for _, m := range r.members[id] {
			if m.UserID == userID {
				out = append(out, r.items[id])
				break
			}
		}
	}

	return out, nil
}

func (r *LeagueRepository) AddMember(_ context.Context, m league.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.members[m.LeagueID] {
		if existing.UserID == m.UserID {
			return league.ErrAlreadyMember
		}
	}

	r.members[m.LeagueID] = append(r.members[m.LeagueID], m)
	return nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]league.Membership(nil), r.members[leagueID]...), nil
}

func (r *LeagueRepository) ListMembersRanked(_ context.Context, leagueID string, limit int) ([]league.Membership, error) {
	r.mu.RLock()
	out := append([]league.Membership(nil), r.members[leagueID]...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].PointsInLeague != out[j].PointsInLeague {
			return out[i].PointsInLeague > out[j].PointsInLeague
		}
		return out[i].UserID < out[j].UserID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// addPointsForUser credits points in every league the user belongs to.
func (r *LeagueRepository) addPointsForUser(userID int64, points int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for leagueID, members := range r.members {
		for i, m := range members {
			if m.UserID == userID {
				members[i].PointsInLeague += points
				r.members[leagueID] = members
				break
			}
		}
	}
}
