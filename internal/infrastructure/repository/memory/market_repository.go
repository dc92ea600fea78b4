package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/market"
)

type MarketRepository struct {
	mu    sync.RWMutex
	items map[string]market.Market
}

func NewMarketRepository() *MarketRepository {
	return &MarketRepository{items: make(map[string]market.Market)}
}

func (r *MarketRepository) Get(_ context.Context, ticker string) (market.Market, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[ticker]
	if !ok {
		return market.Market{}, false, nil
	}

	return m, true, nil
}

func (r *MarketRepository) ListByWeek(_ context.Context, weekStart time.Time) ([]market.Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]market.Market, 0)
	for _, m := range r.items {
		if m.WeekStart.Equal(weekStart) {
			out = append(out, m)
		}
	}
	sortMarkets(out)

	return out, nil
}

func (r *MarketRepository) ListUnresolvedClosed(_ context.Context, now time.Time) ([]market.Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]market.Market, 0)
	for _, m := range r.items {
		if !m.IsResolved() && !now.Before(m.CloseTime) {
			out = append(out, m)
		}
	}
	sortMarkets(out)

	return out, nil
}

func (r *MarketRepository) Upsert(_ context.Context, m market.Market) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[m.Ticker]; ok {
		// feed refresh never touches resolution state
		m.Resolution = existing.Resolution
		m.ResolvedAt = existing.ResolvedAt
	}
	if m.Resolution == "" {
		m.Resolution = market.ResolutionNone
	}
	r.items[m.Ticker] = m

	return nil
}

// markResolved flips the market exactly once.
func (r *MarketRepository) markResolved(ticker string, outcomeYes bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[ticker]
	if !ok {
		return fmt.Errorf("market %s not found", ticker)
	}
	if m.IsResolved() {
		return market.ErrAlreadyResolved
	}

	if outcomeYes {
		m.Resolution = market.ResolutionYes
	} else {
		m.Resolution = market.ResolutionNo
	}
	resolvedAt := at
	m.ResolvedAt = &resolvedAt
	r.items[ticker] = m

	return nil
}

func sortMarkets(out []market.Market) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CloseTime.Equal(out[j].CloseTime) {
			return out[i].CloseTime.Before(out[j].CloseTime)
		}
		return out[i].Ticker < out[j].Ticker
	})
}
