package user

import (
	"fmt"
	"strings"
	"time"
)

// PointsSource selects which points column a ranking reads.
type PointsSource string

const (
	PointsSourceTotal  PointsSource = "total"
	PointsSourceWeekly PointsSource = "weekly"
)

// User is a player identified by the numeric id the messaging front-end
// supplies. Counters are durable so achievement checks stay O(1).
type User struct {
	ID                 int64
	Username           string
	DisplayName        string
	TotalPoints        int
	WeeklyPoints       int
	CurrentStreak      int
	LongestStreak      int
	PredictionsMade    int
	PredictionsCorrect int
	ContrarianWins     int
	SportsCorrect      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u User) ValidateBasic() error {
	if u.ID <= 0 {
		return fmt.Errorf("user id must be positive")
	}
	if strings.TrimSpace(u.DisplayName) == "" {
		return fmt.Errorf("display name is required")
	}

	return nil
}

// Accuracy returns correct picks as a share of all submitted predictions.
func (u User) Accuracy() float64 {
	if u.PredictionsMade == 0 {
		return 0
	}
	return float64(u.PredictionsCorrect) / float64(u.PredictionsMade)
}
