package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/scoring"
	qb "github.com/predictleague/prediction-league/internal/platform/querybuilder"
)

// ScoringRepository applies a resolution batch in one transaction. The
// market flip is guarded on resolution = 'unresolved', so a second
// application of the same market rolls back before touching any totals.
type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) ApplyResolution(ctx context.Context, batch scoring.ResolutionBatch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resolution tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := flipMarket(ctx, tx, batch); err != nil {
		return err
	}
	for _, res := range batch.Results {
		if err := applyResult(ctx, tx, batch, res); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resolution tx: %w", err)
	}

	return nil
}

func flipMarket(ctx context.Context, tx *sqlx.Tx, batch scoring.ResolutionBatch) error {
	outcome := market.ResolutionNo
	if batch.OutcomeYes {
		outcome = market.ResolutionYes
	}

	query, args, err := qb.Update("markets").
		Set("resolution", string(outcome)).
		Set("resolved_at", batch.ResolvedAt).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("ticker", batch.MarketTicker), qb.Eq("resolution", string(market.ResolutionNone))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build market flip query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("flip market %s: %w", batch.MarketTicker, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("market flip rows affected: %w", err)
	}
	if affected == 0 {
		return market.ErrAlreadyResolved
	}

	return nil
}

func applyResult(ctx context.Context, tx *sqlx.Tx, batch scoring.ResolutionBatch, res scoring.Result) error {
	if err := freezePredictionPoints(ctx, tx, res); err != nil {
		return err
	}
	if err := applyUserDeltas(ctx, tx, batch, res); err != nil {
		return err
	}
	if res.Points > 0 {
		if err := creditLeaguePoints(ctx, tx, res); err != nil {
			return err
		}
	}
	return bumpWeekTally(ctx, tx, batch, res)
}

func freezePredictionPoints(ctx context.Context, tx *sqlx.Tx, res scoring.Result) error {
	query, args, err := qb.Update("predictions").
		Set("points_earned", res.Points).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("user_id", res.UserID), qb.Eq("market_ticker", res.MarketTicker)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build freeze points query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("freeze points for user %d on %s: %w", res.UserID, res.MarketTicker, err)
	}

	return nil
}

func applyUserDeltas(ctx context.Context, tx *sqlx.Tx, batch scoring.ResolutionBatch, res scoring.Result) error {
	correct := 0
	if res.Correct {
		correct = 1
	}
	contrarian := 0
	if res.Contrarian {
		contrarian = 1
	}
	sports := 0
	if res.Correct && strings.EqualFold(batch.Category, "sports") {
		sports = 1
	}

	query, args, err := qb.Update("users").
		SetExpr("total_points", "total_points + ?", res.Points).
		SetExpr("weekly_points", "weekly_points + ?", res.Points).
		SetExpr("predictions_correct", "predictions_correct + ?", correct).
		SetExpr("contrarian_wins", "contrarian_wins + ?", contrarian).
		SetExpr("sports_correct", "sports_correct + ?", sports).
		Set("current_streak", res.StreakAfter).
		SetExpr("longest_streak", "GREATEST(longest_streak, ?)", res.StreakAfter).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", res.UserID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build user deltas query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("apply deltas for user %d: %w", res.UserID, err)
	}

	return nil
}

func creditLeaguePoints(ctx context.Context, tx *sqlx.Tx, res scoring.Result) error {
	query, args, err := qb.Update("league_members").
		SetExpr("points_in_league", "points_in_league + ?", res.Points).
		Where(qb.Eq("user_id", res.UserID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build league credit query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("credit league points for user %d: %w", res.UserID, err)
	}

	return nil
}

func bumpWeekTally(ctx context.Context, tx *sqlx.Tx, batch scoring.ResolutionBatch, res scoring.Result) error {
	correct := 0
	if res.Correct {
		correct = 1
	}

	query, args, err := qb.InsertInto("week_tallies").
		Columns("user_id", "week_start", "predicted", "resolved", "correct").
		Values(res.UserID, batch.WeekStart, 0, 1, correct).
		Suffix(`ON CONFLICT (user_id, week_start)
DO UPDATE SET
    resolved = week_tallies.resolved + 1,
    correct = week_tallies.correct + EXCLUDED.correct`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build week tally query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bump week tally for user %d: %w", res.UserID, err)
	}

	return nil
}
