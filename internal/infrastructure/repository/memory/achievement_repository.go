package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/achievement"
)

type AchievementRepository struct {
	mu      sync.RWMutex
	unlocks map[int64]map[achievement.Key]achievement.Unlock
	tallies map[string]achievement.WeekTally
}

func NewAchievementRepository() *AchievementRepository {
	return &AchievementRepository{
		unlocks: make(map[int64]map[achievement.Key]achievement.Unlock),
		tallies: make(map[string]achievement.WeekTally),
	}
}

func (r *AchievementRepository) ListByUser(_ context.Context, userID int64) ([]achievement.Unlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]achievement.Unlock, 0, len(r.unlocks[userID]))
	for _, u := range r.unlocks[userID] {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarnedAt.Equal(out[j].EarnedAt) {
			return out[i].EarnedAt.Before(out[j].EarnedAt)
		}
		return out[i].Key < out[j].Key
	})

	return out, nil
}

func (r *AchievementRepository) RecordUnlock(_ context.Context, u achievement.Unlock) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	held := r.unlocks[u.UserID]
	if held == nil {
		held = make(map[achievement.Key]achievement.Unlock)
		r.unlocks[u.UserID] = held
	}
	if _, ok := held[u.Key]; ok {
		return false, nil
	}

	held[u.Key] = u
	return true, nil
}

func (r *AchievementRepository) GetWeekTally(_ context.Context, userID int64, weekStart time.Time) (achievement.WeekTally, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tallies[tallyKey(userID, weekStart)]
	if !ok {
		return achievement.WeekTally{}, false, nil
	}

	return t, true, nil
}

func (r *AchievementRepository) BumpPredicted(_ context.Context, userID int64, weekStart time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tallyKey(userID, weekStart)
	t, ok := r.tallies[key]
	if !ok {
		t = achievement.WeekTally{UserID: userID, WeekStart: weekStart}
	}
	t.Predicted++
	r.tallies[key] = t

	return nil
}

// bumpResolved folds one resolved prediction into the week's tally.
func (r *AchievementRepository) bumpResolved(userID int64, weekStart time.Time, correct bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tallyKey(userID, weekStart)
	t, ok := r.tallies[key]
	if !ok {
		t = achievement.WeekTally{UserID: userID, WeekStart: weekStart}
	}
	t.Resolved++
	if correct {
		t.Correct++
	}
	r.tallies[key] = t
}

func tallyKey(userID int64, weekStart time.Time) string {
	return strconv.FormatInt(userID, 10) + "::" + weekStart.UTC().Format("2006-01-02")
}
