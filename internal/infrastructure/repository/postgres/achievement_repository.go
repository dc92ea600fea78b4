package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/predictleague/prediction-league/internal/domain/achievement"
	qb "github.com/predictleague/prediction-league/internal/platform/querybuilder"
)

type AchievementRepository struct {
	db *sqlx.DB
}

func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

type achievementUnlockTableModel struct {
	UserID   int64     `db:"user_id"`
	Key      string    `db:"key"`
	EarnedAt time.Time `db:"earned_at"`
}

type weekTallyTableModel struct {
	UserID    int64     `db:"user_id"`
	WeekStart time.Time `db:"week_start"`
	Predicted int       `db:"predicted"`
	Resolved  int       `db:"resolved"`
	Correct   int       `db:"correct"`
}

func (r *AchievementRepository) ListByUser(ctx context.Context, userID int64) ([]achievement.Unlock, error) {
	query, args, err := qb.Select("*").From("achievement_unlocks").
		Where(qb.Eq("user_id", userID)).
		OrderBy("earned_at", "key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list unlocks query: %w", err)
	}

	var rows []achievementUnlockTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list unlocks for user %d: %w", userID, err)
	}

	out := make([]achievement.Unlock, 0, len(rows))
	for _, row := range rows {
		out = append(out, achievement.Unlock{
			UserID:   row.UserID,
			Key:      achievement.Key(row.Key),
			EarnedAt: row.EarnedAt,
		})
	}

	return out, nil
}

func (r *AchievementRepository) RecordUnlock(ctx context.Context, u achievement.Unlock) (bool, error) {
	query, args, err := qb.InsertInto("achievement_unlocks").
		Columns("user_id", "key", "earned_at").
		Values(u.UserID, string(u.Key), u.EarnedAt).
		Suffix("ON CONFLICT (user_id, key) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build record unlock query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("record unlock %s for user %d: %w", u.Key, u.UserID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record unlock rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *AchievementRepository) GetWeekTally(ctx context.Context, userID int64, weekStart time.Time) (achievement.WeekTally, bool, error) {
	query, args, err := qb.Select("*").From("week_tallies").
		Where(qb.Eq("user_id", userID), qb.Eq("week_start", weekStart)).
		ToSQL()
	if err != nil {
		return achievement.WeekTally{}, false, fmt.Errorf("build get week tally query: %w", err)
	}

	var row weekTallyTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return achievement.WeekTally{}, false, nil
		}
		return achievement.WeekTally{}, false, fmt.Errorf("get week tally: %w", err)
	}

	return achievement.WeekTally{
		UserID:    row.UserID,
		WeekStart: row.WeekStart,
		Predicted: row.Predicted,
		Resolved:  row.Resolved,
		Correct:   row.Correct,
	}, true, nil
}

func (r *AchievementRepository) BumpPredicted(ctx context.Context, userID int64, weekStart time.Time) error {
	query, args, err := qb.InsertInto("week_tallies").
		Columns("user_id", "week_start", "predicted", "resolved", "correct").
		Values(userID, weekStart, 1, 0, 0).
		Suffix(`ON CONFLICT (user_id, week_start)
DO UPDATE SET predicted = week_tallies.predicted + 1`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build bump predicted query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bump predicted tally for user %d: %w", userID, err)
	}

	return nil
}
