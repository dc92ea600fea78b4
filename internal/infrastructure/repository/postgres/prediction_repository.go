package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/predictleague/prediction-league/internal/domain/prediction"
	qb "github.com/predictleague/prediction-league/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) GetByUserAndMarket(ctx context.Context, userID int64, ticker string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("user_id", userID), qb.Eq("market_ticker", ticker)).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PredictionRepository) ListByMarket(ctx context.Context, ticker string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("market_ticker", ticker)).
		OrderBy("created_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list market predictions query: %w", err)
	}

	return r.selectPredictions(ctx, query, args, "list predictions for market")
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]prediction.Prediction, error) {
	builder := qb.Select("*").From("predictions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "market_ticker")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user predictions query: %w", err)
	}

	return r.selectPredictions(ctx, query, args, "list predictions for user")
}

// Upsert keeps the original id, created_at and frozen points when the user
// changes an open pick. The (user_id, market_ticker) unique index carries the
// one-pick-per-market rule.
func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) error {
	model := predictionInsertModel{
		ID:           p.ID,
		UserID:       p.UserID,
		MarketTicker: p.MarketTicker,
		ChoiceYes:    p.ChoiceYes,
		Confidence:   p.Confidence,
		SidePrice:    p.SidePrice,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	query, args, err := qb.InsertModel("predictions", model, `ON CONFLICT (user_id, market_ticker)
DO UPDATE SET
    choice_yes = EXCLUDED.choice_yes,
    confidence = EXCLUDED.confidence,
    side_price = EXCLUDED.side_price,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert prediction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return prediction.ErrDuplicate
		}
		return fmt.Errorf("upsert prediction for user %d on %s: %w", p.UserID, p.MarketTicker, err)
	}

	return nil
}

func (r *PredictionRepository) AggregateByMarket(ctx context.Context, ticker string) (prediction.MarketPerformance, error) {
	query := `SELECT
    COUNT(*) FILTER (WHERE choice_yes) AS yes_count,
    COUNT(*) FILTER (WHERE NOT choice_yes) AS no_count,
    COALESCE(AVG(confidence), 0) AS avg_confidence
FROM predictions
WHERE market_ticker = $1`

	var row struct {
		YesCount      int     `db:"yes_count"`
		NoCount       int     `db:"no_count"`
		AvgConfidence float64 `db:"avg_confidence"`
	}
	if err := r.db.GetContext(ctx, &row, query, ticker); err != nil {
		return prediction.MarketPerformance{}, fmt.Errorf("aggregate predictions for %s: %w", ticker, err)
	}

	return prediction.MarketPerformance{
		MarketTicker:  ticker,
		YesCount:      row.YesCount,
		NoCount:       row.NoCount,
		AvgConfidence: row.AvgConfidence,
	}, nil
}

func (r *PredictionRepository) selectPredictions(ctx context.Context, query string, args []any, op string) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
