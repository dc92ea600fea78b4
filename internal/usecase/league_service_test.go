package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/league"
	"github.com/predictleague/prediction-league/internal/domain/user"
)

func seedPlainUser(t *testing.T, f *serviceFixture, id int64) {
	t.Helper()

	now := time.Now().UTC()
	if err := f.users.Upsert(context.Background(), user.User{
		ID: id, DisplayName: "Player", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestCreateLeague(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	seedPlainUser(t, f, 51)

	created, err := f.leagueSvc.CreateLeague(ctx, "friday league", 51, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Name != "friday league" || !created.IsPrivate {
		t.Fatalf("league = %+v", created)
	}

	members, err := f.leagueSvc.GetLeagueMembers(ctx, created.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].Role != league.RoleAdmin || members[0].UserID != 51 {
		t.Fatalf("members = %+v, want creator as admin", members)
	}
}

func TestCreateLeague_DuplicateName(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	seedPlainUser(t, f, 52)
	if _, err := f.leagueSvc.CreateLeague(ctx, "taken", 52, false); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := f.leagueSvc.CreateLeague(ctx, "taken", 52, false)
	if !errors.Is(err, league.ErrNameTaken) {
		t.Fatalf("error = %v, want name taken", err)
	}
}

func TestJoinLeague_ByNameAndDuplicateJoin(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	ctx := context.Background()

	seedPlainUser(t, f, 53)
	seedPlainUser(t, f, 54)
	created, err := f.leagueSvc.CreateLeague(ctx, "joiners", 53, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joined, err := f.leagueSvc.JoinLeague(ctx, 54, "joiners")
	if err != nil {
		t.Fatalf("join by name: %v", err)
	}
	if joined.ID != created.ID {
		t.Fatalf("joined %s, want %s", joined.ID, created.ID)
	}

	_, err = f.leagueSvc.JoinLeague(ctx, 54, created.ID)
	if !errors.Is(err, league.ErrAlreadyMember) {
		t.Fatalf("error = %v, want already member", err)
	}

	mine, err := f.leagueSvc.ListUserLeagues(ctx, 54)
	if err != nil {
		t.Fatalf("list user leagues: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("user leagues = %d, want 1", len(mine))
	}
}

func TestJoinLeague_UnknownLeague(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)

	seedPlainUser(t, f, 55)
	_, err := f.leagueSvc.JoinLeague(context.Background(), 55, "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
