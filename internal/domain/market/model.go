package market

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAlreadyResolved = errors.New("market already resolved")
	ErrClosed          = errors.New("market is closed")
)

// Resolution is the terminal state of a binary market.
type Resolution string

const (
	ResolutionNone Resolution = "unresolved"
	ResolutionYes  Resolution = "yes"
	ResolutionNo   Resolution = "no"
)

// Market is a binary prediction market keyed by its provider ticker.
type Market struct {
	Ticker     string
	WeekStart  time.Time
	Title      string
	Category   string
	CloseTime  time.Time
	YesPrice   float64
	NoPrice    float64
	Volume     int64
	Resolution Resolution
	ResolvedAt *time.Time
}

func (m Market) ValidateBasic() error {
	if strings.TrimSpace(m.Ticker) == "" {
		return fmt.Errorf("market ticker is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("market title is required")
	}
	if m.CloseTime.IsZero() {
		return fmt.Errorf("market close time is required")
	}

	return nil
}

func (m Market) IsResolved() bool {
	return m.Resolution == ResolutionYes || m.Resolution == ResolutionNo
}

// IsOpen reports whether predictions are still accepted.
func (m Market) IsOpen(now time.Time) bool {
	return !m.IsResolved() && now.Before(m.CloseTime)
}

// SidePrice returns the implied probability of the chosen side.
func (m Market) SidePrice(choiceYes bool) float64 {
	if choiceYes {
		return m.YesPrice
	}
	return m.NoPrice
}

// WeekStartOf truncates t to the Monday 00:00 UTC opening its game week.
func WeekStartOf(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -daysSinceMonday)
}
