package prediction

import (
	"errors"
	"fmt"
	"time"
)

var ErrDuplicate = errors.New("prediction already exists")

const (
	MinConfidence     = 0
	MaxConfidence     = 100
	DefaultConfidence = 50
)

// Prediction is one user's pick on one market. A user holds at most one
// prediction per market; re-submitting while the market is open replaces
// the pick.
type Prediction struct {
	ID           string
	UserID       int64
	MarketTicker string
	ChoiceYes    bool
	Confidence   int

	// SidePrice is the implied probability of the chosen side when the
	// pick was last submitted. Contrarian scoring reads this, not the
	// market's price at resolution time.
	SidePrice float64

	// PointsEarned stays zero until the market resolves and is frozen
	// afterwards.
	PointsEarned int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Prediction) ValidateBasic() error {
	if p.ID == "" {
		return fmt.Errorf("prediction id is required")
	}
	if p.UserID <= 0 {
		return fmt.Errorf("user id must be positive")
	}
	if p.MarketTicker == "" {
		return fmt.Errorf("market ticker is required")
	}
	if p.Confidence < MinConfidence || p.Confidence > MaxConfidence {
		return fmt.Errorf("confidence must be between %d and %d", MinConfidence, MaxConfidence)
	}
	if p.SidePrice < 0 || p.SidePrice > 1 {
		return fmt.Errorf("side price must be between 0 and 1")
	}

	return nil
}

// MarketPerformance aggregates the crowd's picks on one market.
type MarketPerformance struct {
	MarketTicker  string
	YesCount      int
	NoCount       int
	AvgConfidence float64
}
