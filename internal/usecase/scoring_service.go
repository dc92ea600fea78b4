package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/prediction"
	"github.com/predictleague/prediction-league/internal/domain/scoring"
	"github.com/predictleague/prediction-league/internal/domain/user"
	"github.com/predictleague/prediction-league/internal/platform/logging"
	"github.com/predictleague/prediction-league/internal/platform/resilience"
)

type ScoringService struct {
	marketRepo     market.Repository
	predictionRepo prediction.Repository
	userRepo       user.Repository
	scoringRepo    scoring.Repository
	achievements   *AchievementService

	cfg    scoring.Config
	logger *logging.Logger
	now    func() time.Time

	// resolveFlight dedups concurrent resolutions of the same market;
	// applyMu orders batches so streak reads stay consistent in-process.
	// The repository's flip guard keeps totals correct across processes.
	resolveFlight resilience.SingleFlight
	applyMu       sync.Mutex
}

func NewScoringService(
	marketRepo market.Repository,
	predictionRepo prediction.Repository,
	userRepo user.Repository,
	scoringRepo scoring.Repository,
	achievements *AchievementService,
	cfg scoring.Config,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		marketRepo:     marketRepo,
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		scoringRepo:    scoringRepo,
		achievements:   achievements,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// ResolveMarket settles a market to its outcome: scores every prediction,
// freezes points, and updates user and league totals in one atomic batch.
// A market settles exactly once; later calls return
// market.ErrAlreadyResolved regardless of the outcome they carry.
func (s *ScoringService) ResolveMarket(ctx context.Context, ticker string, outcomeYes bool) ([]scoring.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ResolveMarket")
	defer span.End()

	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: market ticker is required", ErrInvalidInput)
	}

	value, err, _ := s.resolveFlight.Do("resolve:"+ticker, func() (any, error) {
		return s.resolveMarketOnce(ctx, ticker, outcomeYes)
	})
	if err != nil {
		return nil, err
	}

	results, _ := value.([]scoring.Result)
	return results, nil
}

func (s *ScoringService) resolveMarketOnce(ctx context.Context, ticker string, outcomeYes bool) ([]scoring.Result, error) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	m, found, err := s.marketRepo.Get(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("get market: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: market=%s", ErrNotFound, ticker)
	}
	if m.IsResolved() {
		return nil, fmt.Errorf("resolve %s: %w", ticker, market.ErrAlreadyResolved)
	}

	preds, err := s.predictionRepo.ListByMarket(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("list market predictions: %w", err)
	}

	userIDs := make([]int64, 0, len(preds))
	for _, p := range preds {
		userIDs = append(userIDs, p.UserID)
	}
	owners, err := s.userRepo.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list prediction owners: %w", err)
	}
	ownerByID := make(map[int64]user.User, len(owners))
	for _, u := range owners {
		ownerByID[u.ID] = u
	}

	resolvedAt := s.now().UTC()
	results := make([]scoring.Result, 0, len(preds))
	for _, p := range preds {
		owner, ok := ownerByID[p.UserID]
		if !ok {
			s.logger.WarnContext(ctx, "prediction without owner skipped",
				"market", ticker, "user_id", p.UserID)
			continue
		}

		scored := scoring.Score(scoring.Input{
			ChoiceYes:    p.ChoiceYes,
			OutcomeYes:   outcomeYes,
			SidePrice:    p.SidePrice,
			SubmittedAt:  p.CreatedAt,
			CloseTime:    m.CloseTime,
			StreakBefore: owner.CurrentStreak,
		}, s.cfg)

		scored.UserID = p.UserID
		scored.MarketTicker = ticker
		results = append(results, scored)
	}

	batch := scoring.ResolutionBatch{
		MarketTicker: ticker,
		OutcomeYes:   outcomeYes,
		Category:     m.Category,
		WeekStart:    m.WeekStart,
		ResolvedAt:   resolvedAt,
		Results:      results,
	}
	if err := s.scoringRepo.ApplyResolution(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "market resolved",
		"market", ticker,
		"outcome_yes", outcomeYes,
		"predictions", len(results),
		"points_awarded", batch.TotalPoints(),
	)

	for _, res := range results {
		if _, err := s.achievements.Evaluate(ctx, res.UserID, m.WeekStart); err != nil {
			s.logger.WarnContext(ctx, "achievement evaluation failed after resolution",
				"user_id", res.UserID, "market", ticker, "error", err)
		}
	}

	return results, nil
}

// ResetWeeklyPoints zeroes every user's weekly points. Scheduled at the
// week rollover, never implicit.
func (s *ScoringService) ResetWeeklyPoints(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ResetWeeklyPoints")
	defer span.End()

	if err := s.userRepo.ResetWeeklyPoints(ctx); err != nil {
		return fmt.Errorf("reset weekly points: %w", err)
	}

	s.logger.InfoContext(ctx, "weekly points reset")
	return nil
}
