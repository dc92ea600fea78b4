package postgres

import (
	"database/sql"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/market"
)

type marketTableModel struct {
	Ticker     string       `db:"ticker"`
	WeekStart  time.Time    `db:"week_start"`
	Title      string       `db:"title"`
	Category   string       `db:"category"`
	CloseTime  time.Time    `db:"close_time"`
	YesPrice   float64      `db:"yes_price"`
	NoPrice    float64      `db:"no_price"`
	Volume     int64        `db:"volume"`
	Resolution string       `db:"resolution"`
	ResolvedAt sql.NullTime `db:"resolved_at"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

func (m marketTableModel) toDomain() market.Market {
	return market.Market{
		Ticker:     m.Ticker,
		WeekStart:  m.WeekStart,
		Title:      m.Title,
		Category:   m.Category,
		CloseTime:  m.CloseTime,
		YesPrice:   m.YesPrice,
		NoPrice:    m.NoPrice,
		Volume:     m.Volume,
		Resolution: market.Resolution(m.Resolution),
		ResolvedAt: nullTimeToTimePtr(m.ResolvedAt),
	}
}

type marketInsertModel struct {
	Ticker    string    `db:"ticker"`
	WeekStart time.Time `db:"week_start"`
	Title     string    `db:"title"`
	Category  string    `db:"category"`
	CloseTime time.Time `db:"close_time"`
	YesPrice  float64   `db:"yes_price"`
	NoPrice   float64   `db:"no_price"`
	Volume    int64     `db:"volume"`
}
