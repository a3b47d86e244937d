package identity

import (
	"context"
	"strings"
	"time"
)

// Role is a user's global role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored role string onto a known Role, defaulting to USER.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// User is Gate's canonical security principal.
// PasswordHash is a PHC-encoded Argon2id hash; the plaintext is never stored.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool

	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

// CreateUserInput describes a user registration request.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     Role
	Now      time.Time
}

// ListUsersInput is a zero-based page request.
type ListUsersInput struct {
	Page int
	Size int
}

// Store is the user persistence boundary.
//
// Implementations must never return the plaintext password in any form and
// must look usernames up case-insensitively (normalized).
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)

	// ListUsers returns one page of users ordered by creation time plus the
	// total number of users.
	ListUsers(ctx context.Context, in ListUsersInput) ([]User, int64, error)

	// TouchLastLogin stamps last_login for a user (best-effort bookkeeping).
	TouchLastLogin(ctx context.Context, id string, now time.Time) error
}
