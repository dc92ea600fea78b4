package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/predictleague/prediction-league/internal/domain/prediction"
)

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[string]prediction.Prediction)}
}

func (r *PredictionRepository) GetByUserAndMarket(_ context.Context, userID int64, ticker string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[predictionKey(userID, ticker)]
	if !ok {
		return prediction.Prediction{}, false, nil
	}

	return p, true, nil
}

func (r *PredictionRepository) ListByMarket(_ context.Context, ticker string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if p.MarketTicker == ticker {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID int64, limit int) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey(p.UserID, p.MarketTicker)
	if existing, ok := r.items[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.PointsEarned = existing.PointsEarned
	}
	r.items[key] = p

	return nil
}

func (r *PredictionRepository) AggregateByMarket(_ context.Context, ticker string) (prediction.MarketPerformance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perf := prediction.MarketPerformance{MarketTicker: ticker}
	confidenceSum := 0
	for _, p := range r.items {
		if p.MarketTicker != ticker {
			continue
		}
		if p.ChoiceYes {
			perf.YesCount++
		} else {
			perf.NoCount++
		}
		confidenceSum += p.Confidence
	}
	if total := perf.YesCount + perf.NoCount; total > 0 {
		perf.AvgConfidence = float64(confidenceSum) / float64(total)
	}

	return perf, nil
}

// setPoints freezes the awarded points on a resolved prediction.
func (r *PredictionRepository) setPoints(userID int64, ticker string, points int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey(userID, ticker)
	if p, ok := r.items[key]; ok {
		p.PointsEarned = points
		r.items[key] = p
	}
}

func predictionKey(userID int64, ticker string) string {
	return ticker + "::" + strconv.FormatInt(userID, 10)
}
