package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/predictleague/prediction-league/internal/platform/logging"
	"github.com/predictleague/prediction-league/internal/usecase"
)

// JobScheduler re-arms the recurring jobs after each delivery. Nil is
// fine: the job routes then run once per external trigger without
// scheduling a follow-up.
type JobScheduler interface {
	ScheduleMarketSync(ctx context.Context, delay time.Duration) error
	ScheduleResolutionSweep(ctx context.Context, delay time.Duration) error
	ScheduleWeeklyReset(ctx context.Context) error
}

type Handler struct {
	userService        *usecase.UserService
	leagueService      *usecase.LeagueService
	predictionService  *usecase.PredictionService
	scoringService     *usecase.ScoringService
	leaderboardService *usecase.LeaderboardService
	marketSyncService  *usecase.MarketSyncService
	achievementService *usecase.AchievementService
	scheduler          JobScheduler
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	userService *usecase.UserService,
	leagueService *usecase.LeagueService,
	predictionService *usecase.PredictionService,
	scoringService *usecase.ScoringService,
	leaderboardService *usecase.LeaderboardService,
	marketSyncService *usecase.MarketSyncService,
	achievementService *usecase.AchievementService,
	scheduler JobScheduler,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		userService:        userService,
		leagueService:      leagueService,
		predictionService:  predictionService,
		scoringService:     scoringService,
		leaderboardService: leaderboardService,
		marketSyncService:  marketSyncService,
		achievementService: achievementService,
		scheduler:          scheduler,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON fills dst from the request body, rejecting unknown fields.
// allowEmpty accepts a missing body and leaves dst zero-valued.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
