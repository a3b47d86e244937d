package session

import (
	"context"
	"time"
)

// Record mirrors a refresh_tokens row.
//
// TokenHash is the only trace of the refresh token the store ever sees; the
// plaintext is handed to the client exactly once at creation time. Revoked is
// monotonic: once true it never goes back.
type Record struct {
	ID        string
	UserID    string
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Store abstracts persistence for refresh-token records.
//
// Rows are never deleted: expired and revoked records persist as a trail.
// Implementations must ensure concurrent Revoke calls on the same record
// converge to Revoked=true with no lost update.
type Store interface {
	// Create inserts a new record with Revoked=false and returns it.
	Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (Record, error)

	// FindByHash looks a record up by its token hash.
	// Returns ErrTokenNotFound when no record matches.
	FindByHash(ctx context.Context, tokenHash string) (Record, error)

	// Revoke marks a record revoked by ID (idempotent).
	// Returns ErrTokenNotFound when the record does not exist.
	Revoke(ctx context.Context, id string) error

	// ListByUser returns all records for a user, newest first,
	// including expired and revoked ones.
	ListByUser(ctx context.Context, userID string) ([]Record, error)
}
