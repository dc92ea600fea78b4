package scoring

import (
	"math"
	"time"
)

// Config stores the point formula parameters.
type Config struct {
	BaseCorrectPoints     int
	ContrarianThreshold   float64
	ContrarianMultiplier  float64
	StreakThreshold       int
	StreakBonusPerCorrect int
	EarlyBirdLead         time.Duration
	EarlyBirdBonus        int
}

func DefaultConfig() Config {
	return Config{
		BaseCorrectPoints:     10,
		ContrarianThreshold:   0.30,
		ContrarianMultiplier:  1.5,
		StreakThreshold:       3,
		StreakBonusPerCorrect: 2,
		EarlyBirdLead:         24 * time.Hour,
		EarlyBirdBonus:        3,
	}
}

// Input captures one prediction at resolution time.
type Input struct {
	ChoiceYes   bool
	OutcomeYes  bool
	SidePrice   float64
	SubmittedAt time.Time
	CloseTime   time.Time

	// StreakBefore is the user's consecutive-correct count going into
	// this resolution.
	StreakBefore int
}

// Score awards points for a single prediction.
//
// A wrong pick earns nothing and resets the streak. A correct pick earns
// the base award; the contrarian multiplier applies when the chosen side's
// implied probability at submission was below the threshold; the
// early-bird bonus applies when the pick was submitted more than the lead
// ahead of close; the streak bonus grows per correct pick once the streak
// passes the threshold. Bonuses reward conviction that paid off, so none
// of them apply to an incorrect pick.
func Score(in Input, cfg Config) Result {
	correct := in.ChoiceYes == in.OutcomeYes
	if !correct {
		return Result{Correct: false, Points: 0, StreakAfter: 0}
	}

	streakAfter := in.StreakBefore + 1
	points := cfg.BaseCorrectPoints

	contrarian := in.SidePrice > 0 && in.SidePrice < cfg.ContrarianThreshold
	if contrarian {
		points = roundHalfUp(float64(points) * cfg.ContrarianMultiplier)
	}

	earlyBird := !in.SubmittedAt.IsZero() && !in.CloseTime.IsZero() &&
		in.CloseTime.Sub(in.SubmittedAt) > cfg.EarlyBirdLead
	if earlyBird {
		points += cfg.EarlyBirdBonus
	}

	streakBonus := 0
	if streakAfter > cfg.StreakThreshold {
		streakBonus = (streakAfter - cfg.StreakThreshold) * cfg.StreakBonusPerCorrect
		points += streakBonus
	}

	return Result{
		Correct:     true,
		Points:      points,
		Contrarian:  contrarian,
		EarlyBird:   earlyBird,
		StreakBonus: streakBonus,
		StreakAfter: streakAfter,
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
