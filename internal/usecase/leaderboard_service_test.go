package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/predictleague/prediction-league/internal/domain/user"
)

func seedRankedUser(t *testing.T, f *serviceFixture, id int64, total, weekly int) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, f.users.Upsert(context.Background(), user.User{
		ID:           id,
		Username:     "u",
		DisplayName:  "User",
		TotalPoints:  total,
		WeeklyPoints: weekly,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func TestGetLeaderboard_DenseRanking(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	seedRankedUser(t, f, 1, 50, 5)
	seedRankedUser(t, f, 2, 50, 8)
	seedRankedUser(t, f, 3, 30, 1)
	seedRankedUser(t, f, 4, 30, 0)
	seedRankedUser(t, f, 5, 10, 9)

	rows, err := f.leaderboardSvc.GetLeaderboard(context.Background(), LeaderboardQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	ranks := make([]int, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ranks = append(ranks, row.Rank)
		ids = append(ids, row.UserID)
	}
	require.Equal(t, []int{1, 1, 2, 2, 3}, ranks)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestGetLeaderboard_TieWithLimitPicksLowestUserID(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	seedRankedUser(t, f, 12, 50, 0)
	seedRankedUser(t, f, 7, 50, 0)

	rows, err := f.leaderboardSvc.GetLeaderboard(context.Background(), LeaderboardQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(7), rows[0].UserID)
	require.Equal(t, 1, rows[0].Rank)
	require.Equal(t, 50, rows[0].Points)
}

func TestGetLeaderboard_WeeklySourceColumn(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	seedRankedUser(t, f, 1, 100, 2)
	seedRankedUser(t, f, 2, 10, 40)

	rows, err := f.leaderboardSvc.GetLeaderboard(context.Background(), LeaderboardQuery{Weekly: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].UserID)
	require.Equal(t, 40, rows[0].Points)
	require.Equal(t, int64(1), rows[1].UserID)
	require.Equal(t, 2, rows[1].Points)
}

func TestGetLeaderboard_LeagueBoardIgnoresWeeklyFlag(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	seedRankedUser(t, f, 21, 0, 0)
	seedRankedUser(t, f, 22, 0, 0)
	created, err := f.leagueSvc.CreateLeague(ctx, "weekend crew", 21, false)
	require.NoError(t, err)
	_, err = f.leagueSvc.JoinLeague(ctx, 22, created.ID)
	require.NoError(t, err)

	withFlag, err := f.leaderboardSvc.GetLeaderboard(ctx, LeaderboardQuery{LeagueID: created.ID, Weekly: true})
	require.NoError(t, err)
	withoutFlag, err := f.leaderboardSvc.GetLeaderboard(ctx, LeaderboardQuery{LeagueID: created.ID})
	require.NoError(t, err)
	require.Equal(t, withoutFlag, withFlag)
}

func TestGetLeaderboard_UnknownLeague(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	_, err := f.leaderboardSvc.GetLeaderboard(context.Background(), LeaderboardQuery{LeagueID: "nope"})
	require.ErrorIs(t, err, ErrNotFound)
}
