package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for dev mode and tests.
// Records are lost on restart, mirroring the no-deletion contract otherwise.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Record
	byHash map[string]string // token hash -> record id
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]Record),
		byHash: make(map[string]string),
	}
}

// Create records a new refresh token.
func (s *MemoryStore) Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	id, err := newRecordID(now)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[rec.ID] = rec
	s.byHash[tokenHash] = rec.ID
	return rec, nil
}

// FindByHash looks a record up by token hash.
func (s *MemoryStore) FindByHash(ctx context.Context, tokenHash string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHash[tokenHash]
	if !ok {
		return Record{}, ErrTokenNotFound
	}
	return s.byID[id], nil
}

// Revoke marks a record revoked (idempotent).
func (s *MemoryStore) Revoke(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrTokenNotFound
	}
	rec.Revoked = true
	s.byID[id] = rec
	return nil
}

// ListByUser returns all records for a user, newest first.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.byID {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
