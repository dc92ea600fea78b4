package scoring

import "time"

// Result is the scored outcome of one prediction after its market resolved.
type Result struct {
	UserID       int64
	MarketTicker string
	Correct      bool
	Points       int
	Contrarian   bool
	EarlyBird    bool
	StreakBonus  int
	StreakAfter  int
}

// ResolutionBatch carries everything one market resolution writes: the
// market flip, frozen prediction points, and per-user counter deltas.
// Repositories apply the whole batch atomically or not at all.
type ResolutionBatch struct {
	MarketTicker string
	OutcomeYes   bool
	Category     string
	WeekStart    time.Time
	ResolvedAt   time.Time
	Results      []Result
}

// TotalPoints sums points awarded across the batch.
func (b ResolutionBatch) TotalPoints() int {
	total := 0
	for _, r := range b.Results {
		total += r.Points
	}
	return total
}
