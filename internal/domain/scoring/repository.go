package scoring

import "context"

// Repository applies resolution batches to durable state.
type Repository interface {
	// ApplyResolution atomically flips the market to its outcome, freezes
	// per-prediction points, and increments user totals, streaks, counters,
	// league member points and week tallies. The market flip is guarded so
	// a market resolves exactly once; a second application returns
	// market.ErrAlreadyResolved and writes nothing.
	ApplyResolution(ctx context.Context, batch ResolutionBatch) error
}
