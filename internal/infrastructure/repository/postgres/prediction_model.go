package postgres

import (
	"time"

	"github.com/predictleague/prediction-league/internal/domain/prediction"
)

type predictionTableModel struct {
	ID           string    `db:"id"`
	UserID       int64     `db:"user_id"`
	MarketTicker string    `db:"market_ticker"`
	ChoiceYes    bool      `db:"choice_yes"`
	Confidence   int       `db:"confidence"`
	SidePrice    float64   `db:"side_price"`
	PointsEarned int       `db:"points_earned"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (m predictionTableModel) toDomain() prediction.Prediction {
	return prediction.Prediction{
		ID:           m.ID,
		UserID:       m.UserID,
		MarketTicker: m.MarketTicker,
		ChoiceYes:    m.ChoiceYes,
		Confidence:   m.Confidence,
		SidePrice:    m.SidePrice,
		PointsEarned: m.PointsEarned,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type predictionInsertModel struct {
	ID           string    `db:"id"`
	UserID       int64     `db:"user_id"`
	MarketTicker string    `db:"market_ticker"`
	ChoiceYes    bool      `db:"choice_yes"`
	Confidence   int       `db:"confidence"`
	SidePrice    float64   `db:"side_price"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
