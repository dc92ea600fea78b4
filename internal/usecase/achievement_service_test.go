package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/achievement"
	"github.com/predictleague/prediction-league/internal/domain/user"
)

func seedCounterUser(t *testing.T, f *serviceFixture, u user.User) {
	t.Helper()

	now := time.Now().UTC()
	if u.DisplayName == "" {
		u.DisplayName = "Counter"
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := f.users.Upsert(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestEvaluate_UnlocksFromCounters(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	seedCounterUser(t, f, user.User{
		ID:                 31,
		TotalPoints:        120,
		CurrentStreak:      5,
		PredictionsMade:    20,
		PredictionsCorrect: 15,
		ContrarianWins:     3,
		SportsCorrect:      10,
	})

	unlocked, err := f.achievementSvc.Evaluate(ctx, 31, time.Time{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	want := map[achievement.Key]bool{
		achievement.KeyFirstPrediction:  true,
		achievement.KeyHotStreak5:       true,
		achievement.KeyContrarianGenius: true,
		achievement.KeySportsProphet:    true,
		achievement.KeyCenturyClub:      true,
	}
	if len(unlocked) != len(want) {
		t.Fatalf("unlocked %v, want %d badges", unlocked, len(want))
	}
	for _, key := range unlocked {
		if !want[key] {
			t.Fatalf("unexpected badge %s", key)
		}
	}
}

func TestEvaluate_RepeatedEvaluationUnlocksOnce(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	seedCounterUser(t, f, user.User{ID: 32, PredictionsMade: 1})

	first, err := f.achievementSvc.Evaluate(ctx, 32, time.Time{})
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	if len(first) != 1 || first[0] != achievement.KeyFirstPrediction {
		t.Fatalf("first evaluate = %v, want first_prediction", first)
	}

	for i := 0; i < 3; i++ {
		again, err := f.achievementSvc.Evaluate(ctx, 32, time.Time{})
		if err != nil {
			t.Fatalf("repeat evaluate: %v", err)
		}
		if len(again) != 0 {
			t.Fatalf("repeat evaluate unlocked %v, want nothing", again)
		}
	}

	unlocks, err := f.achievementSvc.ListByUser(ctx, 32)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unlocks) != 1 {
		t.Fatalf("stored unlocks = %d, want 1", len(unlocks))
	}
}

func TestEvaluate_PerfectWeekNeedsEveryPickResolvedCorrect(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	seedCounterUser(t, f, user.User{ID: 33, PredictionsMade: 2})

	for i := 0; i < 2; i++ {
		if err := f.achievements.BumpPredicted(ctx, 33, weekStart); err != nil {
			t.Fatalf("bump predicted: %v", err)
		}
	}

	// one pick still unresolved: no badge yet
	unlocked, err := f.achievementSvc.Evaluate(ctx, 33, weekStart)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for _, key := range unlocked {
		if key == achievement.KeyPerfectWeek {
			t.Fatal("perfect week unlocked before the week resolved")
		}
	}
}

func TestEvaluate_UnknownUser(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	if _, err := f.achievementSvc.Evaluate(context.Background(), 999, time.Time{}); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
