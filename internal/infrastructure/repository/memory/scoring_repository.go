package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/predictleague/prediction-league/internal/domain/scoring"
)

// ScoringRepository applies resolution batches across the in-memory stores.
// A single mutex serializes batches so the market flip guard is race-free.
type ScoringRepository struct {
	mu           sync.Mutex
	users        *UserRepository
	markets      *MarketRepository
	predictions  *PredictionRepository
	leagues      *LeagueRepository
	achievements *AchievementRepository
}

func NewScoringRepository(
	users *UserRepository,
	markets *MarketRepository,
	predictions *PredictionRepository,
	leagues *LeagueRepository,
	achievements *AchievementRepository,
) *ScoringRepository {
	return &ScoringRepository{
		users:        users,
		markets:      markets,
		predictions:  predictions,
		leagues:      leagues,
		achievements: achievements,
	}
}

func (r *ScoringRepository) ApplyResolution(_ context.Context, batch scoring.ResolutionBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// the flip guard makes a re-delivered resolution a no-op
	if err := r.markets.markResolved(batch.MarketTicker, batch.OutcomeYes, batch.ResolvedAt); err != nil {
		return err
	}

	sports := strings.EqualFold(batch.Category, "sports")
	for _, res := range batch.Results {
		r.predictions.setPoints(res.UserID, batch.MarketTicker, res.Points)
		r.users.applyResult(res.UserID, res.Points, res.Correct, res.Contrarian, sports, res.StreakAfter, batch.ResolvedAt)
		if res.Points > 0 {
			r.leagues.addPointsForUser(res.UserID, res.Points)
		}
		r.achievements.bumpResolved(res.UserID, batch.WeekStart, res.Correct)
	}

	return nil
}
