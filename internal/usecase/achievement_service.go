package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/achievement"
	"github.com/predictleague/prediction-league/internal/domain/user"
	"github.com/predictleague/prediction-league/internal/platform/logging"
)

const (
	hotStreakTarget      = 5
	contrarianWinsTarget = 3
	sportsCorrectTarget  = 10
	centuryClubTarget    = 100
)

type AchievementService struct {
	achievementRepo achievement.Repository
	userRepo        user.Repository
	logger          *logging.Logger
	now             func() time.Time
}

func NewAchievementService(achievementRepo achievement.Repository, userRepo user.Repository, logger *logging.Logger) *AchievementService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AchievementService{
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// Evaluate checks every badge condition against the user's durable
// counters and unlocks what is newly earned. Safe to call repeatedly:
// unlock storage dedups per (user, key). The week start scopes the
// perfect-week check; pass the zero time to skip it.
func (s *AchievementService) Evaluate(ctx context.Context, userID int64, weekStart time.Time) ([]achievement.Key, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.Evaluate")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	u, found, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}

	earned := make([]achievement.Key, 0, 2)
	if u.PredictionsMade >= 1 {
		earned = append(earned, achievement.KeyFirstPrediction)
	}
	if u.CurrentStreak >= hotStreakTarget || u.LongestStreak >= hotStreakTarget {
		earned = append(earned, achievement.KeyHotStreak5)
	}
	if u.ContrarianWins >= contrarianWinsTarget {
		earned = append(earned, achievement.KeyContrarianGenius)
	}
	if u.SportsCorrect >= sportsCorrectTarget {
		earned = append(earned, achievement.KeySportsProphet)
	}
	if u.TotalPoints >= centuryClubTarget {
		earned = append(earned, achievement.KeyCenturyClub)
	}

	if !weekStart.IsZero() {
		tally, found, err := s.achievementRepo.GetWeekTally(ctx, userID, weekStart)
		if err != nil {
			return nil, fmt.Errorf("get week tally: %w", err)
		}
		if found && tally.IsPerfect() {
			earned = append(earned, achievement.KeyPerfectWeek)
		}
	}

	unlocked := make([]achievement.Key, 0, len(earned))
	earnedAt := s.now().UTC()
	for _, key := range earned {
		fresh, err := s.achievementRepo.RecordUnlock(ctx, achievement.Unlock{
			UserID:   userID,
			Key:      key,
			EarnedAt: earnedAt,
		})
		if err != nil {
			return unlocked, fmt.Errorf("record unlock %s: %w", key, err)
		}
		if fresh {
			unlocked = append(unlocked, key)
			s.logger.InfoContext(ctx, "achievement unlocked", "user_id", userID, "key", string(key))
		}
	}

	return unlocked, nil
}

func (s *AchievementService) ListByUser(ctx context.Context, userID int64) ([]achievement.Unlock, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.ListByUser")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	unlocks, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	return unlocks, nil
}
