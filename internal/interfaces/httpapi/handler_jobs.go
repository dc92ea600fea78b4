package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/scoring"
)

const (
	marketSyncInterval      = 24 * time.Hour
	resolutionSweepInterval = time.Hour
)

func (h *Handler) RunSyncMarketsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncMarketsJob")
	defer span.End()

	count, err := h.marketSyncService.SyncWeeklyMarkets(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync markets job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.scheduleFollowUp(ctx, "sync-markets", func(ctx context.Context) error {
		return h.scheduler.ScheduleMarketSync(ctx, marketSyncInterval)
	})

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"synced": count})
}

func (h *Handler) RunSweepResolutionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSweepResolutionsJob")
	defer span.End()

	summary, err := h.marketSyncService.SweepResolutions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "sweep resolutions job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.scheduleFollowUp(ctx, "sweep-resolutions", func(ctx context.Context) error {
		return h.scheduler.ScheduleResolutionSweep(ctx, resolutionSweepInterval)
	})

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) RunResetWeeklyJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResetWeeklyJob")
	defer span.End()

	if err := h.scoringService.ResetWeeklyPoints(ctx); err != nil {
		h.logger.ErrorContext(ctx, "reset weekly job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.scheduleFollowUp(ctx, "reset-weekly", func(ctx context.Context) error {
		return h.scheduler.ScheduleWeeklyReset(ctx)
	})

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) ResolveMarket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveMarket")
	defer span.End()

	ticker := strings.TrimSpace(r.PathValue("marketID"))

	var req resolveMarketRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := h.scoringService.ResolveMarket(ctx, ticker, *req.OutcomeYes)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve market failed", "market", ticker, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]resolutionResultDTO, 0, len(results))
	for _, res := range results {
		items = append(items, resolutionResultToDTO(ctx, res))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// scheduleFollowUp re-arms a recurring job after a successful run. The
// job itself already succeeded, so a scheduling failure is logged and
// swallowed; the next external trigger recovers the cadence.
func (h *Handler) scheduleFollowUp(ctx context.Context, job string, schedule func(context.Context) error) {
	if h.scheduler == nil {
		return
	}
	if err := schedule(ctx); err != nil {
		h.logger.WarnContext(ctx, "schedule follow-up job failed", "job", job, "error", err)
	}
}

type resolveMarketRequest struct {
	OutcomeYes *bool `json:"outcomeYes" validate:"required"`
}

type resolutionResultDTO struct {
	UserID       int64  `json:"userId"`
	MarketTicker string `json:"marketTicker"`
	Correct      bool   `json:"correct"`
	Points       int    `json:"points"`
	Contrarian   bool   `json:"contrarian"`
	EarlyBird    bool   `json:"earlyBird"`
	StreakBonus  int    `json:"streakBonus"`
	StreakAfter  int    `json:"streakAfter"`
}

func resolutionResultToDTO(ctx context.Context, res scoring.Result) resolutionResultDTO {
	ctx, span := startSpan(ctx, "httpapi.resolutionResultToDTO")
	defer span.End()

	return resolutionResultDTO{
		UserID:       res.UserID,
		MarketTicker: res.MarketTicker,
		Correct:      res.Correct,
		Points:       res.Points,
		Contrarian:   res.Contrarian,
		EarlyBird:    res.EarlyBird,
		StreakBonus:  res.StreakBonus,
		StreakAfter:  res.StreakAfter,
	}
}
