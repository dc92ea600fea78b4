package achievement

import "time"

type Key string

const (
	KeyFirstPrediction  Key = "first_prediction"
	KeyHotStreak5       Key = "hot_streak_5"
	KeyContrarianGenius Key = "contrarian_genius"
	KeySportsProphet    Key = "sports_prophet"
	KeyPerfectWeek      Key = "perfect_week"
	KeyCenturyClub      Key = "century_club"
)

// Definition is a catalog entry describing one badge.
type Definition struct {
	Key         Key
	Title       string
	Description string
	Emoji       string
}

// Catalog returns every badge in display order.
func Catalog() []Definition {
	return []Definition{
		{Key: KeyFirstPrediction, Title: "First Prediction", Description: "Submit your first prediction", Emoji: "🎯"},
		{Key: KeyHotStreak5, Title: "Hot Streak", Description: "Get 5 predictions right in a row", Emoji: "🔥"},
		{Key: KeyContrarianGenius, Title: "Contrarian Genius", Description: "Win 3 predictions made against the crowd", Emoji: "🧠"},
		{Key: KeySportsProphet, Title: "Sports Prophet", Description: "Get 10 sports predictions right", Emoji: "🏆"},
		{Key: KeyPerfectWeek, Title: "Perfect Week", Description: "Get every prediction of a week right", Emoji: "✨"},
		{Key: KeyCenturyClub, Title: "Century Club", Description: "Reach 100 total points", Emoji: "💯"},
	}
}

// Lookup returns the catalog entry for a key.
func Lookup(key Key) (Definition, bool) {
	for _, def := range Catalog() {
		if def.Key == key {
			return def, true
		}
	}
	return Definition{}, false
}

// Unlock records that a user earned a badge. Append-only, one per
// (user, key).
type Unlock struct {
	UserID   int64
	Key      Key
	EarnedAt time.Time
}

// WeekTally tracks one user's predictions inside one game week so the
// perfect-week check never rescans prediction history.
type WeekTally struct {
	UserID    int64
	WeekStart time.Time
	Predicted int
	Resolved  int
	Correct   int
}

// IsPerfect reports whether every prediction of the week resolved correct.
func (t WeekTally) IsPerfect() bool {
	return t.Predicted >= 1 && t.Resolved == t.Predicted && t.Correct == t.Predicted
}
