package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/achievement"
	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/prediction"
	"github.com/predictleague/prediction-league/internal/domain/user"
	"github.com/predictleague/prediction-league/internal/platform/id"
	"github.com/predictleague/prediction-league/internal/platform/logging"
)

type PredictionService struct {
	predictionRepo  prediction.Repository
	marketRepo      market.Repository
	userRepo        user.Repository
	achievementRepo achievement.Repository

	users        *UserService
	achievements *AchievementService

	idGen  id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewPredictionService(
	predictionRepo prediction.Repository,
	marketRepo market.Repository,
	userRepo user.Repository,
	achievementRepo achievement.Repository,
	users *UserService,
	achievements *AchievementService,
	idGen id.Generator,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		predictionRepo:  predictionRepo,
		marketRepo:      marketRepo,
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		users:           users,
		achievements:    achievements,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// SubmitInput carries one pick from the front-end. Confidence nil means
// the default.
type SubmitInput struct {
	UserID       int64
	Username     string
	DisplayName  string
	MarketTicker string
	ChoiceYes    bool
	Confidence   *int
}

// Submit records a pick on an open market. An existing pick on the same
// market is replaced while the market stays open; a closed or resolved
// market rejects the submission.
func (s *PredictionService) Submit(ctx context.Context, in SubmitInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	in.MarketTicker = strings.TrimSpace(in.MarketTicker)
	if in.MarketTicker == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: market ticker is required", ErrInvalidInput)
	}

	confidence := prediction.DefaultConfidence
	if in.Confidence != nil {
		confidence = *in.Confidence
	}
	if confidence < prediction.MinConfidence || confidence > prediction.MaxConfidence {
		return prediction.Prediction{}, fmt.Errorf("%w: confidence must be between %d and %d",
			ErrInvalidInput, prediction.MinConfidence, prediction.MaxConfidence)
	}

	u, err := s.users.GetOrCreate(ctx, in.UserID, in.Username, in.DisplayName)
	if err != nil {
		return prediction.Prediction{}, err
	}

	m, found, err := s.marketRepo.Get(ctx, in.MarketTicker)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get market: %w", err)
	}
	if !found {
		return prediction.Prediction{}, fmt.Errorf("%w: market=%s", ErrNotFound, in.MarketTicker)
	}

	now := s.now().UTC()
	if !m.IsOpen(now) {
		return prediction.Prediction{}, fmt.Errorf("submit on %s: %w", m.Ticker, market.ErrClosed)
	}

	existing, hadPrediction, err := s.predictionRepo.GetByUserAndMarket(ctx, u.ID, m.Ticker)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction: %w", err)
	}

	p := prediction.Prediction{
		UserID:       u.ID,
		MarketTicker: m.Ticker,
		ChoiceYes:    in.ChoiceYes,
		Confidence:   confidence,
		SidePrice:    m.SidePrice(in.ChoiceYes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if hadPrediction {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		newID, err := s.idGen.NewID()
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
		}
		p.ID = newID
	}
	if err := p.ValidateBasic(); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.predictionRepo.Upsert(ctx, p); err != nil {
		if errors.Is(err, prediction.ErrDuplicate) {
			return prediction.Prediction{}, err
		}
		return prediction.Prediction{}, fmt.Errorf("store prediction: %w", err)
	}

	if !hadPrediction {
		if err := s.userRepo.IncrementPredictionsMade(ctx, u.ID); err != nil {
			return prediction.Prediction{}, fmt.Errorf("count prediction: %w", err)
		}
		if err := s.achievementRepo.BumpPredicted(ctx, u.ID, m.WeekStart); err != nil {
			return prediction.Prediction{}, fmt.Errorf("bump week tally: %w", err)
		}
		if _, err := s.achievements.Evaluate(ctx, u.ID, time.Time{}); err != nil {
			// badge evaluation never blocks a submitted pick
			s.logger.WarnContext(ctx, "achievement evaluation failed after submit",
				"user_id", u.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "prediction submitted",
		"user_id", u.ID,
		"market", m.Ticker,
		"choice_yes", in.ChoiceYes,
		"updated", hadPrediction,
	)

	return p, nil
}

func (s *PredictionService) ListByUser(ctx context.Context, userID int64, limit int) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListByUser")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.predictionRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	return items, nil
}

// UserStats summarizes one user's standing for the stats surface.
type UserStats struct {
	User      user.User
	Accuracy  float64
	Recent    []prediction.Prediction
	WeekTally achievement.WeekTally
}

const recentPredictionsLimit = 10

func (s *PredictionService) GetUserStats(ctx context.Context, userID int64) (UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetUserStats")
	defer span.End()

	if userID <= 0 {
		return UserStats{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	u, found, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return UserStats{}, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return UserStats{}, fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}

	recent, err := s.predictionRepo.ListByUser(ctx, userID, recentPredictionsLimit)
	if err != nil {
		return UserStats{}, fmt.Errorf("list recent predictions: %w", err)
	}

	weekStart := market.WeekStartOf(s.now())
	tally, _, err := s.achievementRepo.GetWeekTally(ctx, userID, weekStart)
	if err != nil {
		return UserStats{}, fmt.Errorf("get week tally: %w", err)
	}
	tally.UserID = userID
	tally.WeekStart = weekStart

	return UserStats{
		User:      u,
		Accuracy:  u.Accuracy(),
		Recent:    recent,
		WeekTally: tally,
	}, nil
}

func (s *PredictionService) GetMarketPerformance(ctx context.Context, ticker string) (prediction.MarketPerformance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetMarketPerformance")
	defer span.End()

	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return prediction.MarketPerformance{}, fmt.Errorf("%w: market ticker is required", ErrInvalidInput)
	}

	if _, found, err := s.marketRepo.Get(ctx, ticker); err != nil {
		return prediction.MarketPerformance{}, fmt.Errorf("get market: %w", err)
	} else if !found {
		return prediction.MarketPerformance{}, fmt.Errorf("%w: market=%s", ErrNotFound, ticker)
	}

	perf, err := s.predictionRepo.AggregateByMarket(ctx, ticker)
	if err != nil {
		return prediction.MarketPerformance{}, fmt.Errorf("aggregate market predictions: %w", err)
	}
	perf.MarketTicker = ticker

	return perf, nil
}
