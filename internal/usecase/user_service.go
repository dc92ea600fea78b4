package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/user"
)

type UserService struct {
	userRepo user.Repository
	now      func() time.Time
}

func NewUserService(userRepo user.Repository) *UserService {
	return &UserService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// GetOrCreate looks the user up by the front-end supplied id and registers
// them on first contact. Username and display name refresh on every call
// so renames propagate.
func (s *UserService) GetOrCreate(ctx context.Context, id int64, username, displayName string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.GetOrCreate")
	defer span.End()

	if id <= 0 {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.TrimSpace(username)
	}
	if displayName == "" {
		return user.User{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	existing, found, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}

	if found {
		if existing.Username == username && existing.DisplayName == displayName {
			return existing, nil
		}
		existing.Username = username
		existing.DisplayName = displayName
		existing.UpdatedAt = now
		if err := s.userRepo.Upsert(ctx, existing); err != nil {
			return user.User{}, fmt.Errorf("update user: %w", err)
		}
		return existing, nil
	}

	created := user.User{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := created.ValidateBasic(); err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.userRepo.Upsert(ctx, created); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Get")
	defer span.End()

	if id <= 0 {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	u, found, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return user.User{}, fmt.Errorf("%w: user=%d", ErrNotFound, id)
	}

	return u, nil
}
