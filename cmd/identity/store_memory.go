package identity

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gate/cmd/security/password"
)

// MemoryStore is an in-memory Store for dev mode and tests.
// Data is lost on restart.
type MemoryStore struct {
	passwords password.Config

	mu         sync.RWMutex
	byID       map[string]User
	byUsername map[string]string // normalized username -> id
	byEmail    map[string]string // normalized email -> id
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore(pw password.Config) *MemoryStore {
	return &MemoryStore{
		passwords:  pw,
		byID:       make(map[string]User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// CreateUser hashes the password and records a new user.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	username := NormalizeUsername(in.Username)
	email := NormalizeEmail(in.Email)

	if username == "" {
		return User{}, invalid(op, "username is required")
	}
	if email == "" {
		return User{}, invalid(op, "email is required")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	role := in.Role
	if role == "" {
		role = RoleUser
	}

	pwHash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return User{}, invalid(op, err.Error())
		}
		return User{}, err
	}

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return User{}, ConflictError{Op: op, Field: "username"}
	}
	if _, exists := s.byEmail[email]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[userID] = u
	s.byUsername[username] = userID
	s.byEmail[email] = userID
	return u, nil
}

// GetUserByID fetches a user by ID.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, notFound(op)
	}
	return u, nil
}

// GetUserByUsername fetches a user by its normalized username.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.GetUserByUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[NormalizeUsername(username)]
	if !ok {
		return User{}, notFound(op)
	}
	return s.byID[id], nil
}

// ListUsers returns one page of users ordered by creation time.
func (s *MemoryStore) ListUsers(ctx context.Context, in ListUsersInput) ([]User, int64, error) {
	const op = "identity.ListUsers"

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if in.Page < 0 || in.Size <= 0 {
		return nil, 0, invalid(op, "invalid page request")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := in.Page * in.Size
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + in.Size
	if end > len(all) {
		end = len(all)
	}
	page := make([]User, end-start)
	copy(page, all[start:end])
	return page, total, nil
}

// TouchLastLogin stamps last_login.
func (s *MemoryStore) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	const op = "identity.TouchLastLogin"

	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return notFound(op)
	}
	ts := now
	u.LastLogin = &ts
	u.UpdatedAt = now
	s.byID[id] = u
	return nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)
