package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/scoring"
	"github.com/predictleague/prediction-league/internal/infrastructure/repository/memory"
	"github.com/predictleague/prediction-league/internal/platform/id"
	"github.com/predictleague/prediction-league/internal/platform/logging"
)

type serviceFixture struct {
	users        *memory.UserRepository
	markets      *memory.MarketRepository
	predictions  *memory.PredictionRepository
	leagues      *memory.LeagueRepository
	achievements *memory.AchievementRepository

	userSvc        *UserService
	achievementSvc *AchievementService
	predictionSvc  *PredictionService
	scoringSvc     *ScoringService
	leaderboardSvc *LeaderboardService
	leagueSvc      *LeagueService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	users := memory.NewUserRepository()
	markets := memory.NewMarketRepository()
	predictions := memory.NewPredictionRepository()
	leagues := memory.NewLeagueRepository()
	achievements := memory.NewAchievementRepository()
	scoringRepo := memory.NewScoringRepository(users, markets, predictions, leagues, achievements)

	logger := logging.NewNop()
	idGen := id.NewRandomGenerator()

	userSvc := NewUserService(users)
	achievementSvc := NewAchievementService(achievements, users, logger)
	predictionSvc := NewPredictionService(predictions, markets, users, achievements, userSvc, achievementSvc, idGen, logger)
	scoringSvc := NewScoringService(markets, predictions, users, scoringRepo, achievementSvc, scoring.DefaultConfig(), logger)
	leaderboardSvc := NewLeaderboardService(users, leagues)
	leagueSvc := NewLeagueService(leagues, users, idGen)

	return &serviceFixture{
		users:          users,
		markets:        markets,
		predictions:    predictions,
		leagues:        leagues,
		achievements:   achievements,
		userSvc:        userSvc,
		achievementSvc: achievementSvc,
		predictionSvc:  predictionSvc,
		scoringSvc:     scoringSvc,
		leaderboardSvc: leaderboardSvc,
		leagueSvc:      leagueSvc,
	}
}

func (f *serviceFixture) seedMarket(t *testing.T, ticker string, yesPrice float64, closeIn time.Duration) market.Market {
	t.Helper()

	now := time.Now().UTC()
	m := market.Market{
		Ticker:     ticker,
		WeekStart:  market.WeekStartOf(now),
		Title:      "Will it happen: " + ticker,
		Category:   "sports",
		CloseTime:  now.Add(closeIn),
		YesPrice:   yesPrice,
		NoPrice:    1 - yesPrice,
		Volume:     1000,
		Resolution: market.ResolutionNone,
	}
	require.NoError(t, f.markets.Upsert(context.Background(), m))
	return m
}

func (f *serviceFixture) submit(t *testing.T, userID int64, ticker string, choiceYes bool) {
	t.Helper()

	_, err := f.predictionSvc.Submit(context.Background(), SubmitInput{
		UserID:       userID,
		Username:     "user",
		DisplayName:  "User",
		MarketTicker: ticker,
		ChoiceYes:    choiceYes,
	})
	require.NoError(t, err)
}

func TestResolveMarket_ContrarianEarlyBird(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	// yes trades at 20%, market closes 30 hours out
	f.seedMarket(t, "LONGSHOT", 0.20, 30*time.Hour)
	f.submit(t, 101, "LONGSHOT", true)

	results, err := f.scoringSvc.ResolveMarket(ctx, "LONGSHOT", true)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// base 10 x1.5 contrarian, +3 early bird
	require.Equal(t, 18, results[0].Points)
	require.True(t, results[0].Contrarian)
	require.True(t, results[0].EarlyBird)

	u, err := f.userSvc.Get(ctx, 101)
	require.NoError(t, err)
	require.Equal(t, 18, u.TotalPoints)
	require.Equal(t, 18, u.WeeklyPoints)
	require.Equal(t, 1, u.CurrentStreak)
	require.Equal(t, 1, u.ContrarianWins)

	p, found, err := f.predictions.GetByUserAndMarket(ctx, 101, "LONGSHOT")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 18, p.PointsEarned)
}

func TestResolveMarket_StreakBonusStartsAfterThreshold(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	tickers := []string{"M1", "M2", "M3", "M4"}
	for _, ticker := range tickers {
		// even odds and a short close keep multipliers and bonuses out
		f.seedMarket(t, ticker, 0.50, 2*time.Hour)
	}

	awarded := make([]int, 0, len(tickers))
	for _, ticker := range tickers {
		f.submit(t, 201, ticker, true)
		results, err := f.scoringSvc.ResolveMarket(ctx, ticker, true)
		require.NoError(t, err)
		require.Len(t, results, 1)
		awarded = append(awarded, results[0].Points)
	}

	// no bonus through the third straight win, then +2 per extra win
	require.Equal(t, []int{10, 10, 10, 12}, awarded)

	u, err := f.userSvc.Get(ctx, 201)
	require.NoError(t, err)
	require.Equal(t, 42, u.TotalPoints)
	require.Equal(t, 4, u.CurrentStreak)
	require.Equal(t, 4, u.LongestStreak)
}

func TestResolveMarket_SecondResolutionRejected(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	f.seedMarket(t, "ONCE", 0.50, 2*time.Hour)
	f.submit(t, 301, "ONCE", true)

	_, err := f.scoringSvc.ResolveMarket(ctx, "ONCE", true)
	require.NoError(t, err)

	before, err := f.userSvc.Get(ctx, 301)
	require.NoError(t, err)

	// re-resolving, even with the opposite outcome, changes nothing
	_, err = f.scoringSvc.ResolveMarket(ctx, "ONCE", false)
	require.ErrorIs(t, err, market.ErrAlreadyResolved)

	after, err := f.userSvc.Get(ctx, 301)
	require.NoError(t, err)
	require.Equal(t, before.TotalPoints, after.TotalPoints)
	require.Equal(t, before.CurrentStreak, after.CurrentStreak)
	require.Equal(t, before.PredictionsCorrect, after.PredictionsCorrect)
}

func TestResolveMarket_WrongPickResetsStreak(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	f.seedMarket(t, "W1", 0.50, 2*time.Hour)
	f.seedMarket(t, "W2", 0.50, 2*time.Hour)
	f.submit(t, 401, "W1", true)
	f.submit(t, 401, "W2", true)

	_, err := f.scoringSvc.ResolveMarket(ctx, "W1", true)
	require.NoError(t, err)
	_, err = f.scoringSvc.ResolveMarket(ctx, "W2", false)
	require.NoError(t, err)

	u, err := f.userSvc.Get(ctx, 401)
	require.NoError(t, err)
	require.Equal(t, 0, u.CurrentStreak)
	require.Equal(t, 1, u.LongestStreak)
	require.Equal(t, 10, u.TotalPoints)
}

func TestResolveMarket_TotalsMatchFrozenPredictionPoints(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	userIDs := []int64{501, 502, 503}
	tickers := []string{"I1", "I2", "I3", "I4"}
	prices := []float64{0.20, 0.50, 0.70, 0.25}
	for i, ticker := range tickers {
		f.seedMarket(t, ticker, prices[i], time.Duration(i+1)*10*time.Hour)
	}

	for i, ticker := range tickers {
		for j, uid := range userIDs {
			f.submit(t, uid, ticker, (i+j)%2 == 0)
		}
	}
	for i, ticker := range tickers {
		_, err := f.scoringSvc.ResolveMarket(ctx, ticker, i%2 == 0)
		require.NoError(t, err)
	}

	for _, uid := range userIDs {
		u, err := f.userSvc.Get(ctx, uid)
		require.NoError(t, err)

		preds, err := f.predictions.ListByUser(ctx, uid, 0)
		require.NoError(t, err)

		sum := 0
		for _, p := range preds {
			sum += p.PointsEarned
		}
		require.Equal(t, sum, u.TotalPoints, "user %d totals must equal frozen prediction points", uid)
	}
}

func TestResolveMarket_CreditsLeagueMemberPoints(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	f.seedMarket(t, "LP1", 0.50, 2*time.Hour)
	f.submit(t, 601, "LP1", true)
	f.submit(t, 602, "LP1", false)

	created, err := f.leagueSvc.CreateLeague(ctx, "office pool", 601, false)
	require.NoError(t, err)
	_, err = f.leagueSvc.JoinLeague(ctx, 602, created.Name)
	require.NoError(t, err)

	_, err = f.scoringSvc.ResolveMarket(ctx, "LP1", true)
	require.NoError(t, err)

	rows, err := f.leaderboardSvc.GetLeaderboard(ctx, LeaderboardQuery{LeagueID: created.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(601), rows[0].UserID)
	require.Equal(t, 10, rows[0].Points)
	require.Equal(t, int64(602), rows[1].UserID)
	require.Equal(t, 0, rows[1].Points)
}

func TestResetWeeklyPoints(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	f.seedMarket(t, "WK1", 0.50, 2*time.Hour)
	f.submit(t, 701, "WK1", true)
	_, err := f.scoringSvc.ResolveMarket(ctx, "WK1", true)
	require.NoError(t, err)

	require.NoError(t, f.scoringSvc.ResetWeeklyPoints(ctx))

	u, err := f.userSvc.Get(ctx, 701)
	require.NoError(t, err)
	require.Equal(t, 0, u.WeeklyPoints)
	require.Equal(t, 10, u.TotalPoints)
}

func TestResolveMarket_UnknownMarket(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	_, err := f.scoringSvc.ResolveMarket(context.Background(), "MISSING", true)
	require.True(t, errors.Is(err, ErrNotFound))
}
