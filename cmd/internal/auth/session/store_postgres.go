package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (refresh_tokens).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed refresh-token store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts a new refresh-token row and returns it.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (Record, error) {
	id, err := newRecordID(now)
	if err != nil {
		return Record{}, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (
			id, user_id, token_hash, issued_at, expires_at, revoked
		) VALUES ($1, $2, $3, $4, $5, FALSE)
	`, id, userID, tokenHash, now, expiresAt)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Revoked:   false,
	}, nil
}

// FindByHash loads a refresh-token row by token hash.
func (s *PostgresStore) FindByHash(ctx context.Context, tokenHash string) (Record, error) {
	var rec Record

	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, issued_at, expires_at, revoked
		FROM refresh_tokens
		WHERE token_hash = $1
	`, tokenHash).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.TokenHash,
		&rec.IssuedAt,
		&rec.ExpiresAt,
		&rec.Revoked,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrTokenNotFound
	}
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// Revoke marks a refresh-token row revoked (idempotent).
func (s *PostgresStore) Revoke(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// ListByUser returns all refresh-token rows for a user, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, token_hash, issued_at, expires_at, revoked
		FROM refresh_tokens
		WHERE user_id = $1
		ORDER BY issued_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.TokenHash,
			&rec.IssuedAt,
			&rec.ExpiresAt,
			&rec.Revoked,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Store = (*PostgresStore)(nil)
