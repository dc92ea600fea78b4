package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/league"
	"github.com/predictleague/prediction-league/internal/domain/user"
	"github.com/predictleague/prediction-league/internal/platform/id"
)

type LeagueService struct {
	leagueRepo league.Repository
	userRepo   user.Repository
	idGen      id.Generator
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, userRepo user.Repository, idGen id.Generator) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		userRepo:   userRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

// CreateLeague registers a league and enrolls the creator as its admin.
func (s *LeagueService) CreateLeague(ctx context.Context, name string, adminUserID int64, isPrivate bool) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CreateLeague")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	if adminUserID <= 0 {
		return league.League{}, fmt.Errorf("%w: admin user id is required", ErrInvalidInput)
	}

	if _, found, err := s.userRepo.Get(ctx, adminUserID); err != nil {
		return league.League{}, fmt.Errorf("get admin user: %w", err)
	} else if !found {
		return league.League{}, fmt.Errorf("%w: user=%d", ErrNotFound, adminUserID)
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	now := s.now().UTC()
	created := league.League{
		ID:          leagueID,
		Name:        name,
		AdminUserID: adminUserID,
		IsPrivate:   isPrivate,
		CreatedAt:   now,
	}
	if err := s.leagueRepo.Create(ctx, created); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}

	admin := league.Membership{
		LeagueID: leagueID,
		UserID:   adminUserID,
		Role:     league.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.leagueRepo.AddMember(ctx, admin); err != nil {
		return league.League{}, fmt.Errorf("enroll league admin: %w", err)
	}

	return created, nil
}

// JoinLeague enrolls a user, accepting either a league id or its name.
func (s *LeagueService) JoinLeague(ctx context.Context, userID int64, nameOrID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.JoinLeague")
	defer span.End()

	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return league.League{}, fmt.Errorf("%w: league name or id is required", ErrInvalidInput)
	}
	if userID <= 0 {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	if _, found, err := s.userRepo.Get(ctx, userID); err != nil {
		return league.League{}, fmt.Errorf("get user: %w", err)
	} else if !found {
		return league.League{}, fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}

	target, found, err := s.leagueRepo.GetByID(ctx, nameOrID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by id: %w", err)
	}
	if !found {
		target, found, err = s.leagueRepo.GetByName(ctx, nameOrID)
		if err != nil {
			return league.League{}, fmt.Errorf("get league by name: %w", err)
		}
	}
	if !found {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, nameOrID)
	}

	member := league.Membership{
		LeagueID: target.ID,
		UserID:   userID,
		Role:     league.RoleMember,
		JoinedAt: s.now().UTC(),
	}
	if err := s.leagueRepo.AddMember(ctx, member); err != nil {
		return league.League{}, fmt.Errorf("enroll league member: %w", err)
	}

	return target, nil
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	items, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return items, nil
}

func (s *LeagueService) ListUserLeagues(ctx context.Context, userID int64) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListUserLeagues")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}

	return items, nil
}

func (s *LeagueService) GetLeagueMembers(ctx context.Context, leagueID string) ([]league.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeagueMembers")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	if _, found, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	return members, nil
}
