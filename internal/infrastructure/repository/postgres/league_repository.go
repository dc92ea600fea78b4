package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/predictleague/prediction-league/internal/domain/league"
	qb "github.com/predictleague/prediction-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Create(ctx context.Context, l league.League) error {
	query, args, err := qb.InsertInto("leagues").
		Columns("id", "name", "admin_user_id", "is_private", "created_at").
		Values(l.ID, l.Name, l.AdminUserID, l.IsPrivate, l.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create league query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return league.ErrNameTaken
		}
		return fmt.Errorf("create league: %w", err)
	}

	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, id string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *LeagueRepository) GetByName(ctx context.Context, name string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(name) = LOWER(?)", name))
}

func (r *LeagueRepository) getOne(ctx context.Context, cond qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	return r.selectLeagues(ctx, query, args)
}

func (r *LeagueRepository) ListByUser(ctx context.Context, userID int64) ([]league.League, error) {
	query, args, err := qb.Select("l.*").From("leagues l").
		Join("league_members m ON m.league_id = l.id").
		Where(qb.Eq("m.user_id", userID)).
		OrderBy("l.created_at", "l.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by user query: %w", err)
	}

	return r.selectLeagues(ctx, query, args)
}

func (r *LeagueRepository) selectLeagues(ctx context.Context, query string, args []any) ([]league.League, error) {
	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, m league.Membership) error {
	query, args, err := qb.InsertInto("league_members").
		Columns("league_id", "user_id", "role", "points_in_league", "joined_at").
		Values(m.LeagueID, m.UserID, string(m.Role), m.PointsInLeague, m.JoinedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add member query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return league.ErrAlreadyMember
		}
		return fmt.Errorf("add league member: %w", err)
	}

	return nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Membership, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list members query: %w", err)
	}

	return r.selectMembers(ctx, query, args)
}

func (r *LeagueRepository) ListMembersRanked(ctx context.Context, leagueID string, limit int) ([]league.Membership, error) {
	builder := qb.Select("*").From("league_members").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("points_in_league DESC", "user_id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ranked members query: %w", err)
	}

	return r.selectMembers(ctx, query, args)
}

func (r *LeagueRepository) selectMembers(ctx context.Context, query string, args []any) ([]league.Membership, error) {
	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
