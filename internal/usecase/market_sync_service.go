package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/platform/logging"
)

// MarketFeed is the slice of the prediction-market provider the sync
// needs: current markets and settlement lookups.
type MarketFeed interface {
	ListWeeklyMarkets(ctx context.Context, weekStart time.Time) ([]market.Market, error)

	// GetResolution reports whether the provider settled the market and
	// with which outcome.
	GetResolution(ctx context.Context, ticker string) (settled bool, outcomeYes bool, err error)
}

const (
	defaultSweepWorkers = 8

	sweepStatusResolved = "resolved"
	sweepStatusPending  = "pending"
	sweepStatusSkipped  = "skipped"
	sweepStatusFailed   = "failed"
)

type MarketSyncService struct {
	marketRepo market.Repository
	feed       MarketFeed
	scoring    *ScoringService

	workers int
	logger  *logging.Logger
	now     func() time.Time
}

func NewMarketSyncService(marketRepo market.Repository, feed MarketFeed, scoring *ScoringService, workers int, logger *logging.Logger) *MarketSyncService {
	if workers < 1 {
		workers = defaultSweepWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MarketSyncService{
		marketRepo: marketRepo,
		feed:       feed,
		scoring:    scoring,
		workers:    workers,
		logger:     logger,
		now:        time.Now,
	}
}

// SyncWeeklyMarkets pulls the current week's markets from the feed and
// refreshes the local catalog. Resolution state never changes here.
func (s *MarketSyncService) SyncWeeklyMarkets(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketSyncService.SyncWeeklyMarkets")
	defer span.End()

	weekStart := market.WeekStartOf(s.now())
	markets, err := s.feed.ListWeeklyMarkets(ctx, weekStart)
	if err != nil {
		return 0, fmt.Errorf("%w: list weekly markets: %v", ErrDependencyUnavailable, err)
	}

	stored := 0
	for _, m := range markets {
		if m.WeekStart.IsZero() {
			m.WeekStart = weekStart
		}
		if err := m.ValidateBasic(); err != nil {
			s.logger.WarnContext(ctx, "feed market skipped", "ticker", m.Ticker, "error", err)
			continue
		}
		if err := s.marketRepo.Upsert(ctx, m); err != nil {
			return stored, fmt.Errorf("upsert market %s: %w", m.Ticker, err)
		}
		stored++
	}

	s.logger.InfoContext(ctx, "weekly markets synced",
		"week_start", weekStart.Format("2006-01-02"),
		"received", len(markets),
		"stored", stored,
	)

	return stored, nil
}

// SweepSummary reports one resolution sweep.
type SweepSummary struct {
	Checked  int                `json:"checked"`
	Resolved int                `json:"resolved"`
	Pending  int                `json:"pending"`
	Skipped  int                `json:"skipped"`
	Failed   int                `json:"failed"`
	Markets  []SweepMarketState `json:"markets"`
}

type SweepMarketState struct {
	Ticker  string `json:"ticker"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SweepResolutions finds markets past close, asks the feed for their
// settlements concurrently, then applies each settled outcome through the
// scoring engine one market at a time. A market the engine has already
// settled is counted as skipped, never re-scored.
func (s *MarketSyncService) SweepResolutions(ctx context.Context) (SweepSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketSyncService.SweepResolutions")
	defer span.End()

	due, err := s.marketRepo.ListUnresolvedClosed(ctx, s.now().UTC())
	if err != nil {
		return SweepSummary{}, fmt.Errorf("list unresolved markets: %w", err)
	}

	summary := SweepSummary{Checked: len(due)}
	if len(due) == 0 {
		return summary, nil
	}

	type lookup struct {
		ticker     string
		settled    bool
		outcomeYes bool
		err        error
	}

	workerCount := s.workers
	if workerCount > len(due) {
		workerCount = len(due)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	lookups := make([]lookup, len(due))
	var workers sync.WaitGroup
	for i, m := range due {
		i, m := i, m
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			settled, outcomeYes, lookupErr := s.feed.GetResolution(ctx, m.Ticker)
			lookups[i] = lookup{ticker: m.Ticker, settled: settled, outcomeYes: outcomeYes, err: lookupErr}
		}); err != nil {
			workers.Done()
			return SweepSummary{}, fmt.Errorf("submit lookup to worker pool: %w", err)
		}
	}
	workers.Wait()

	// apply sequentially so batches stay ordered
	for _, l := range lookups {
		state := SweepMarketState{Ticker: l.ticker}
		switch {
		case l.err != nil:
			state.Status = sweepStatusFailed
			state.Message = l.err.Error()
			summary.Failed++
		case !l.settled:
			state.Status = sweepStatusPending
			summary.Pending++
		default:
			_, resolveErr := s.scoring.ResolveMarket(ctx, l.ticker, l.outcomeYes)
			switch {
			case resolveErr == nil:
				state.Status = sweepStatusResolved
				summary.Resolved++
			case errors.Is(resolveErr, market.ErrAlreadyResolved):
				state.Status = sweepStatusSkipped
				summary.Skipped++
			default:
				state.Status = sweepStatusFailed
				state.Message = resolveErr.Error()
				summary.Failed++
			}
		}
		summary.Markets = append(summary.Markets, state)
	}

	sort.SliceStable(summary.Markets, func(i, j int) bool {
		return summary.Markets[i].Ticker < summary.Markets[j].Ticker
	})

	s.logger.InfoContext(ctx, "resolution sweep finished",
		"checked", summary.Checked,
		"resolved", summary.Resolved,
		"pending", summary.Pending,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}

// ListWeeklyMarkets returns the stored catalog for the current week.
func (s *MarketSyncService) ListWeeklyMarkets(ctx context.Context) ([]market.Market, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketSyncService.ListWeeklyMarkets")
	defer span.End()

	markets, err := s.marketRepo.ListByWeek(ctx, market.WeekStartOf(s.now()))
	if err != nil {
		return nil, fmt.Errorf("list markets by week: %w", err)
	}

	return markets, nil
}

// GetMarket returns one stored market by ticker.
func (s *MarketSyncService) GetMarket(ctx context.Context, ticker string) (market.Market, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketSyncService.GetMarket")
	defer span.End()

	if ticker == "" {
		return market.Market{}, fmt.Errorf("%w: market ticker is required", ErrInvalidInput)
	}

	m, found, err := s.marketRepo.Get(ctx, ticker)
	if err != nil {
		return market.Market{}, fmt.Errorf("get market: %w", err)
	}
	if !found {
		return market.Market{}, fmt.Errorf("%w: market=%s", ErrNotFound, ticker)
	}

	return m, nil
}
