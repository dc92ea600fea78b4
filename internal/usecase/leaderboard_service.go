package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/league"
	"github.com/predictleague/prediction-league/internal/domain/user"
	"github.com/predictleague/prediction-league/internal/platform/cache"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100

	// The global board is the hottest read and tolerates a few seconds
	// of staleness between resolutions.
	globalBoardCacheTTL = 5 * time.Second
)

type LeaderboardService struct {
	userRepo   user.Repository
	leagueRepo league.Repository
	boards     *cache.Store
}

func NewLeaderboardService(userRepo user.Repository, leagueRepo league.Repository) *LeaderboardService {
	return &LeaderboardService{
		userRepo:   userRepo,
		leagueRepo: leagueRepo,
		boards:     cache.NewStore(globalBoardCacheTTL),
	}
}

// LeaderboardQuery selects the board. A league id switches the board to
// that league's member points; the weekly flag is ignored there since
// league standings track points earned while a member, which has no
// weekly slice.
type LeaderboardQuery struct {
	LeagueID string
	Weekly   bool
	Limit    int
}

type LeaderboardRow struct {
	Rank        int
	UserID      int64
	Username    string
	DisplayName string
	Points      int
}

// GetLeaderboard returns rows densely ranked by descending points, ties
// broken by ascending user id, truncated to the limit after ordering.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, q LeaderboardQuery) ([]LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	if strings.TrimSpace(q.LeagueID) != "" {
		return s.leagueBoard(ctx, strings.TrimSpace(q.LeagueID), limit)
	}

	key := fmt.Sprintf("global:%t:%d", q.Weekly, limit)
	cached, err := s.boards.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.globalBoard(ctx, q.Weekly, limit)
	})
	if err != nil {
		return nil, err
	}
	rows, ok := cached.([]LeaderboardRow)
	if !ok {
		return s.globalBoard(ctx, q.Weekly, limit)
	}
	return rows, nil
}

func (s *LeaderboardService) globalBoard(ctx context.Context, weekly bool, limit int) ([]LeaderboardRow, error) {
	source := user.PointsSourceTotal
	if weekly {
		source = user.PointsSourceWeekly
	}

	users, err := s.userRepo.ListRanked(ctx, source, limit)
	if err != nil {
		return nil, fmt.Errorf("list ranked users: %w", err)
	}

	rows := make([]LeaderboardRow, 0, len(users))
	rank := 0
	lastPoints := 0
	for idx, u := range users {
		points := u.TotalPoints
		if weekly {
			points = u.WeeklyPoints
		}
		if idx == 0 || points != lastPoints {
			rank++
		}
		lastPoints = points

		rows = append(rows, LeaderboardRow{
			Rank:        rank,
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Points:      points,
		})
	}

	return rows, nil
}

func (s *LeaderboardService) leagueBoard(ctx context.Context, leagueID string, limit int) ([]LeaderboardRow, error) {
	if _, found, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	members, err := s.leagueRepo.ListMembersRanked(ctx, leagueID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ranked league members: %w", err)
	}

	userIDs := make([]int64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	owners, err := s.userRepo.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list member users: %w", err)
	}
	ownerByID := make(map[int64]user.User, len(owners))
	for _, u := range owners {
		ownerByID[u.ID] = u
	}

	rows := make([]LeaderboardRow, 0, len(members))
	rank := 0
	lastPoints := 0
	for idx, m := range members {
		if idx == 0 || m.PointsInLeague != lastPoints {
			rank++
		}
		lastPoints = m.PointsInLeague

		row := LeaderboardRow{
			Rank:   rank,
			UserID: m.UserID,
			Points: m.PointsInLeague,
		}
		if owner, ok := ownerByID[m.UserID]; ok {
			row.Username = owner.Username
			row.DisplayName = owner.DisplayName
		}
		rows = append(rows, row)
	}

	return rows, nil
}
