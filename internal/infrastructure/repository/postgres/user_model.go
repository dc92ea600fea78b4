package postgres

import (
	"time"

	"github.com/predictleague/prediction-league/internal/domain/user"
)

type userTableModel struct {
	ID                 int64     `db:"id"`
	Username           string    `db:"username"`
	DisplayName        string    `db:"display_name"`
	TotalPoints        int       `db:"total_points"`
	WeeklyPoints       int       `db:"weekly_points"`
	CurrentStreak      int       `db:"current_streak"`
	LongestStreak      int       `db:"longest_streak"`
	PredictionsMade    int       `db:"predictions_made"`
	PredictionsCorrect int       `db:"predictions_correct"`
	ContrarianWins     int       `db:"contrarian_wins"`
	SportsCorrect      int       `db:"sports_correct"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:                 m.ID,
		Username:           m.Username,
		DisplayName:        m.DisplayName,
		TotalPoints:        m.TotalPoints,
		WeeklyPoints:       m.WeeklyPoints,
		CurrentStreak:      m.CurrentStreak,
		LongestStreak:      m.LongestStreak,
		PredictionsMade:    m.PredictionsMade,
		PredictionsCorrect: m.PredictionsCorrect,
		ContrarianWins:     m.ContrarianWins,
		SportsCorrect:      m.SportsCorrect,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func userInsertModelFrom(u user.User) userInsertModel {
	return userInsertModel{
		ID:                 u.ID,
		Username:           u.Username,
		DisplayName:        u.DisplayName,
		TotalPoints:        u.TotalPoints,
		WeeklyPoints:       u.WeeklyPoints,
		CurrentStreak:      u.CurrentStreak,
		LongestStreak:      u.LongestStreak,
		PredictionsMade:    u.PredictionsMade,
		PredictionsCorrect: u.PredictionsCorrect,
		ContrarianWins:     u.ContrarianWins,
		SportsCorrect:      u.SportsCorrect,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

type userInsertModel struct {
	ID                 int64     `db:"id"`
	Username           string    `db:"username"`
	DisplayName        string    `db:"display_name"`
	TotalPoints        int       `db:"total_points"`
	WeeklyPoints       int       `db:"weekly_points"`
	CurrentStreak      int       `db:"current_streak"`
	LongestStreak      int       `db:"longest_streak"`
	PredictionsMade    int       `db:"predictions_made"`
	PredictionsCorrect int       `db:"predictions_correct"`
	ContrarianWins     int       `db:"contrarian_wins"`
	SportsCorrect      int       `db:"sports_correct"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
