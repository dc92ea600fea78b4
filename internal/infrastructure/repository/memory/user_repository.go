package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[int64]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[int64]user.User)}
}

func (r *UserRepository) Get(_ context.Context, id int64) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, false, nil
	}

	return u, true, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, ids []int64) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out = append(out, u)
		}
	}

	return out, nil
}

func (r *UserRepository) Upsert(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[u.ID] = u
	return nil
}

func (r *UserRepository) ListRanked(_ context.Context, source user.PointsSource, limit int) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	points := func(u user.User) int {
		if source == user.PointsSourceWeekly {
			return u.WeeklyPoints
		}
		return u.TotalPoints
	}
	sort.Slice(out, func(i, j int) bool {
		if points(out[i]) != points(out[j]) {
			return points(out[i]) > points(out[j])
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *UserRepository) ResetWeeklyPoints(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.items {
		u.WeeklyPoints = 0
		u.UpdatedAt = time.Now().UTC()
		r.items[id] = u
	}

	return nil
}

// applyResult folds one scored prediction into the user's counters.
func (r *UserRepository) applyResult(userID int64, points int, correct, contrarian, sports bool, streakAfter int, resolvedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[userID]
	if !ok {
		return
	}

	u.TotalPoints += points
	u.WeeklyPoints += points
	u.CurrentStreak = streakAfter
	if streakAfter > u.LongestStreak {
		u.LongestStreak = streakAfter
	}
	if correct {
		u.PredictionsCorrect++
		if contrarian {
			u.ContrarianWins++
		}
		if sports {
			u.SportsCorrect++
		}
	}
	u.UpdatedAt = resolvedAt
	r.items[userID] = u
}

func (r *UserRepository) IncrementPredictionsMade(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return nil
	}
	u.PredictionsMade++
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}
