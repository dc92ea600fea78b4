package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/prediction"
)

func (h *Handler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMarkets")
	defer span.End()

	markets, err := h.marketSyncService.ListWeeklyMarkets(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list markets failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]marketDTO, 0, len(markets))
	for _, m := range markets {
		items = append(items, marketToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMarket")
	defer span.End()

	ticker := strings.TrimSpace(r.PathValue("marketID"))
	m, err := h.marketSyncService.GetMarket(ctx, ticker)
	if err != nil {
		h.logger.WarnContext(ctx, "get market failed", "market", ticker, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, marketToDTO(ctx, m))
}

func (h *Handler) GetMarketPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMarketPerformance")
	defer span.End()

	ticker := strings.TrimSpace(r.PathValue("marketID"))
	perf, err := h.predictionService.GetMarketPerformance(ctx, ticker)
	if err != nil {
		h.logger.WarnContext(ctx, "get market performance failed", "market", ticker, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, marketPerformanceToDTO(ctx, perf))
}

type marketDTO struct {
	Ticker     string  `json:"ticker"`
	WeekStart  string  `json:"weekStart"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	CloseTime  string  `json:"closeTime"`
	YesPrice   float64 `json:"yesPrice"`
	NoPrice    float64 `json:"noPrice"`
	Volume     int64   `json:"volume"`
	Resolution string  `json:"resolution"`
	ResolvedAt string  `json:"resolvedAt,omitempty"`
}

type marketPerformanceDTO struct {
	MarketTicker  string  `json:"marketTicker"`
	YesCount      int     `json:"yesCount"`
	NoCount       int     `json:"noCount"`
	AvgConfidence float64 `json:"avgConfidence"`
}

func marketToDTO(ctx context.Context, m market.Market) marketDTO {
	ctx, span := startSpan(ctx, "httpapi.marketToDTO")
	defer span.End()

	dto := marketDTO{
		Ticker:     m.Ticker,
		WeekStart:  m.WeekStart.UTC().Format("2006-01-02"),
		Title:      m.Title,
		Category:   m.Category,
		CloseTime:  m.CloseTime.UTC().Format(time.RFC3339),
		YesPrice:   m.YesPrice,
		NoPrice:    m.NoPrice,
		Volume:     m.Volume,
		Resolution: string(m.Resolution),
	}
	if m.ResolvedAt != nil {
		dto.ResolvedAt = m.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func marketPerformanceToDTO(ctx context.Context, perf prediction.MarketPerformance) marketPerformanceDTO {
	ctx, span := startSpan(ctx, "httpapi.marketPerformanceToDTO")
	defer span.End()

	return marketPerformanceDTO{
		MarketTicker:  perf.MarketTicker,
		YesCount:      perf.YesCount,
		NoCount:       perf.NoCount,
		AvgConfidence: perf.AvgConfidence,
	}
}
