package postgres

import (
	"time"

	"github.com/predictleague/prediction-league/internal/domain/league"
)

type leagueTableModel struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	AdminUserID int64     `db:"admin_user_id"`
	IsPrivate   bool      `db:"is_private"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:          m.ID,
		Name:        m.Name,
		AdminUserID: m.AdminUserID,
		IsPrivate:   m.IsPrivate,
		CreatedAt:   m.CreatedAt,
	}
}

type leagueMemberTableModel struct {
	LeagueID       string    `db:"league_id"`
	UserID         int64     `db:"user_id"`
	Role           string    `db:"role"`
	PointsInLeague int       `db:"points_in_league"`
	JoinedAt       time.Time `db:"joined_at"`
}

func (m leagueMemberTableModel) toDomain() league.Membership {
	return league.Membership{
		LeagueID:       m.LeagueID,
		UserID:         m.UserID,
		Role:           league.Role(m.Role),
		PointsInLeague: m.PointsInLeague,
		JoinedAt:       m.JoinedAt,
	}
}
