package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/predictleague/prediction-league/internal/domain/user"
	qb "github.com/predictleague/prediction-league/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id int64) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []userTableModel
	query := "SELECT * FROM users WHERE id = ANY($1) ORDER BY id"
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *UserRepository) Upsert(ctx context.Context, u user.User) error {
	query, args, err := qb.InsertModel("users", userInsertModelFrom(u), `ON CONFLICT (id)
DO UPDATE SET
    username = EXCLUDED.username,
    display_name = EXCLUDED.display_name,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user %d: %w", u.ID, err)
	}

	return nil
}

func (r *UserRepository) ListRanked(ctx context.Context, source user.PointsSource, limit int) ([]user.User, error) {
	column := "total_points"
	if source == user.PointsSourceWeekly {
		column = "weekly_points"
	}

	builder := qb.Select("*").From("users").
		OrderBy(column+" DESC", "id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ranked users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ranked users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *UserRepository) IncrementPredictionsMade(ctx context.Context, id int64) error {
	query, args, err := qb.Update("users").
		SetExpr("predictions_made", "predictions_made + 1").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build increment predictions query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment predictions made for user %d: %w", id, err)
	}

	return nil
}

func (r *UserRepository) ResetWeeklyPoints(ctx context.Context) error {
	query, args, err := qb.Update("users").
		Set("weekly_points", 0).
		SetExpr("updated_at", "NOW()").
		Where(qb.Expr("weekly_points <> 0")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reset weekly points query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset weekly points: %w", err)
	}

	return nil
}
