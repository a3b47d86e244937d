package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	plain, hash, err := newOpaqueRefreshToken(32)
	if err != nil {
		t.Fatalf("newOpaqueRefreshToken: %v", err)
	}
	if len(plain) < 36 {
		t.Fatalf("plaintext too short: %d chars", len(plain))
	}

	created, err := store.Create(ctx, now, "u1", hash, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := store.FindByHash(ctx, hashRefreshTokenHex(plain))
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if found.ID != created.ID || found.TokenHash != hash {
		t.Fatalf("round trip mismatch: %+v vs %+v", found, created)
	}
	// The plaintext never appears in the stored record.
	if found.TokenHash == plain {
		t.Fatal("record holds plaintext")
	}

	if _, err := store.FindByHash(ctx, hashRefreshTokenHex("other")); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("got %v, want ErrTokenNotFound", err)
	}
}

func TestMemoryStoreRevoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	rec, err := store.Create(ctx, now, "u1", "hash-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// Revoking again is a no-op.
	if err := store.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	if err := store.Revoke(ctx, "missing"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("got %v, want ErrTokenNotFound", err)
	}

	got, err := store.FindByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if !got.Revoked {
		t.Fatal("record not revoked")
	}
}

func TestMemoryStoreConcurrentRevoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	rec, err := store.Create(ctx, now, "u1", "hash-c", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Revoke(ctx, rec.ID)
		}()
	}
	wg.Wait()

	got, err := store.FindByHash(ctx, "hash-c")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if !got.Revoked {
		t.Fatal("concurrent revokes lost the update")
	}
}

func TestRecordIDCarriesCreationTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	_, hash, err := newOpaqueRefreshToken(32)
	if err != nil {
		t.Fatalf("newOpaqueRefreshToken: %v", err)
	}

	rec, err := store.Create(ctx, now, "u1", hash, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	id, err := ulid.Parse(rec.ID)
	if err != nil {
		t.Fatalf("record ID is not a ULID: %v", err)
	}
	if got, want := id.Time(), ulid.Timestamp(now); got != want {
		t.Fatalf("ULID timestamp = %d, want %d", got, want)
	}
}
