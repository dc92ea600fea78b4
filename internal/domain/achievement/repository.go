package achievement

import (
	"context"
	"time"
)

// Repository describes unlock and week-tally persistence.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Unlock, error)

	// RecordUnlock stores the unlock if the user does not hold the badge
	// yet. Returns false when it was already held.
	RecordUnlock(ctx context.Context, u Unlock) (bool, error)

	GetWeekTally(ctx context.Context, userID int64, weekStart time.Time) (WeekTally, bool, error)

	// BumpPredicted counts a user's first submission on a market toward
	// the week's tally.
	BumpPredicted(ctx context.Context, userID int64, weekStart time.Time) error
}
