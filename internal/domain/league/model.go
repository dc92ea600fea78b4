package league

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNameTaken     = errors.New("league name already taken")
	ErrAlreadyMember = errors.New("user is already a league member")
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// League is a private scoreboard a group of users competes in.
type League struct {
	ID          string
	Name        string
	AdminUserID int64
	IsPrivate   bool
	CreatedAt   time.Time
}

func (l League) ValidateBasic() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if l.AdminUserID <= 0 {
		return fmt.Errorf("admin user id must be positive")
	}

	return nil
}

// Membership links a user to a league and carries points scored while
// the user was a member.
type Membership struct {
	LeagueID       string
	UserID         int64
	Role           Role
	PointsInLeague int
	JoinedAt       time.Time
}
