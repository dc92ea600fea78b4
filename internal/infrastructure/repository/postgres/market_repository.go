package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/predictleague/prediction-league/internal/domain/market"
	qb "github.com/predictleague/prediction-league/internal/platform/querybuilder"
)

type MarketRepository struct {
	db *sqlx.DB
}

func NewMarketRepository(db *sqlx.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

func (r *MarketRepository) Get(ctx context.Context, ticker string) (market.Market, bool, error) {
	query, args, err := qb.Select("*").From("markets").
		Where(qb.Eq("ticker", ticker)).
		ToSQL()
	if err != nil {
		return market.Market{}, false, fmt.Errorf("build get market query: %w", err)
	}

	var row marketTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return market.Market{}, false, nil
		}
		return market.Market{}, false, fmt.Errorf("get market: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MarketRepository) ListByWeek(ctx context.Context, weekStart time.Time) ([]market.Market, error) {
	query, args, err := qb.Select("*").From("markets").
		Where(qb.Eq("week_start", weekStart)).
		OrderBy("close_time", "ticker").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list markets by week query: %w", err)
	}

	return r.selectMarkets(ctx, query, args)
}

func (r *MarketRepository) ListUnresolvedClosed(ctx context.Context, now time.Time) ([]market.Market, error) {
	query, args, err := qb.Select("*").From("markets").
		Where(
			qb.Eq("resolution", string(market.ResolutionNone)),
			qb.Lte("close_time", now),
		).
		OrderBy("close_time", "ticker").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list unresolved markets query: %w", err)
	}

	return r.selectMarkets(ctx, query, args)
}

func (r *MarketRepository) selectMarkets(ctx context.Context, query string, args []any) ([]market.Market, error) {
	var rows []marketTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	out := make([]market.Market, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *MarketRepository) Upsert(ctx context.Context, m market.Market) error {
	insertModel := marketInsertModel{
		Ticker:    m.Ticker,
		WeekStart: m.WeekStart,
		Title:     m.Title,
		Category:  m.Category,
		CloseTime: m.CloseTime,
		YesPrice:  m.YesPrice,
		NoPrice:   m.NoPrice,
		Volume:    m.Volume,
	}
	query, args, err := qb.InsertModel("markets", insertModel, `ON CONFLICT (ticker)
DO UPDATE SET
    week_start = EXCLUDED.week_start,
    title = EXCLUDED.title,
    category = EXCLUDED.category,
    close_time = EXCLUDED.close_time,
    yes_price = EXCLUDED.yes_price,
    no_price = EXCLUDED.no_price,
    volume = EXCLUDED.volume,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert market query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert market %s: %w", m.Ticker, err)
	}

	return nil
}
