package market

import (
	"context"
	"time"
)

// Repository describes market persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, ticker string) (Market, bool, error)
	ListByWeek(ctx context.Context, weekStart time.Time) ([]Market, error)

	// ListUnresolvedClosed returns markets whose close time has passed but
	// which have not been resolved yet.
	ListUnresolvedClosed(ctx context.Context, now time.Time) ([]Market, error)

	// Upsert refreshes feed-sourced fields by ticker. Resolution state is
	// never touched through this path.
	Upsert(ctx context.Context, m Market) error
}
