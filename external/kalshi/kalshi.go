package kalshi

import (
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/market"
)

// marketsEnvelope is the provider's paginated market listing.
type marketsEnvelope struct {
	Markets []marketItem `json:"markets"`
	Cursor  string       `json:"cursor"`
}

type marketEnvelope struct {
	Market marketItem `json:"market"`
}

type marketItem struct {
	Ticker    string  `json:"ticker"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
	Result    string  `json:"result"`
	CloseTime string  `json:"close_time"`
	Volume    int64   `json:"volume"`
	YesBid    float64 `json:"yes_bid"`
	YesAsk    float64 `json:"yes_ask"`
	NoBid     float64 `json:"no_bid"`
	NoAsk     float64 `json:"no_ask"`
	LastPrice float64 `json:"last_price"`
}

func (m marketItem) toDomain(weekStart time.Time) (market.Market, bool) {
	closeTime := parseProviderTime(m.CloseTime)
	if strings.TrimSpace(m.Ticker) == "" || closeTime == nil {
		return market.Market{}, false
	}

	yesPrice := normalizePrice(m.YesBid)
	if yesPrice == 0 {
		yesPrice = normalizePrice(m.LastPrice)
	}
	noPrice := normalizePrice(m.NoBid)
	if noPrice == 0 && yesPrice > 0 {
		noPrice = 1 - yesPrice
	}

	category := strings.TrimSpace(m.Category)
	if category == "" {
		category = "General"
	}

	return market.Market{
		Ticker:     strings.TrimSpace(m.Ticker),
		WeekStart:  weekStart,
		Title:      strings.TrimSpace(m.Title),
		Category:   category,
		CloseTime:  closeTime.UTC(),
		YesPrice:   yesPrice,
		NoPrice:    noPrice,
		Volume:     m.Volume,
		Resolution: market.ResolutionNone,
	}, true
}

func (m marketItem) settled() (bool, bool) {
	result := strings.ToLower(strings.TrimSpace(m.Result))
	if result != "yes" && result != "no" {
		return false, false
	}
	status := strings.ToLower(strings.TrimSpace(m.Status))
	if status != "" && status != "settled" && status != "finalized" {
		return false, false
	}
	return true, result == "yes"
}

// Provider prices are cents on the dollar; normalize to implied probability.
func normalizePrice(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	if v < 0 {
		return 0
	}
	return v
}

func parseProviderTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

type demoEntry struct {
	ticker    string
	title     string
	category  string
	closeIn   time.Duration
	volume    int64
	yesPrice  float64
	noPrice   float64
}

var demoCatalog = []demoEntry{
	{
		ticker:   "DEMO-BTC-100K",
		title:    "Will Bitcoin trade above $100,000 before the market closes?",
		category: "Crypto",
		closeIn:  30 * 24 * time.Hour,
		volume:   15420,
		yesPrice: 0.65,
		noPrice:  0.35,
	},
	{
		ticker:   "DEMO-GDP-3PCT",
		title:    "Will quarterly US GDP growth exceed 3%?",
		category: "Economics",
		closeIn:  45 * 24 * time.Hour,
		volume:   8930,
		yesPrice: 0.42,
		noPrice:  0.58,
	},
	{
		ticker:   "DEMO-NFL-50PTS",
		title:    "Will any team score 50+ points in the next NFL game?",
		category: "Sports",
		closeIn:  3 * 24 * time.Hour,
		volume:   5670,
		yesPrice: 0.28,
		noPrice:  0.72,
	},
	{
		ticker:   "DEMO-APPLE-LAUNCH",
		title:    "Will Apple announce a new product line this quarter?",
		category: "Technology",
		closeIn:  60 * 24 * time.Hour,
		volume:   12100,
		yesPrice: 0.73,
		noPrice:  0.27,
	},
	{
		ticker:   "DEMO-NYC-100F",
		title:    "Will the temperature exceed 100F in NYC this week?",
		category: "Weather",
		closeIn:  7 * 24 * time.Hour,
		volume:   3450,
		yesPrice: 0.15,
		noPrice:  0.85,
	},
}
