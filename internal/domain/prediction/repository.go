package prediction

import "context"

// Repository describes prediction persistence needs from use cases.
type Repository interface {
	GetByUserAndMarket(ctx context.Context, userID int64, ticker string) (Prediction, bool, error)
	ListByMarket(ctx context.Context, ticker string) ([]Prediction, error)

	// ListByUser returns predictions newest first. A limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID int64, limit int) ([]Prediction, error)

	Upsert(ctx context.Context, p Prediction) error

	AggregateByMarket(ctx context.Context, ticker string) (MarketPerformance, error)
}
