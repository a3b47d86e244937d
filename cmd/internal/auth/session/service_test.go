package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeDirectory backs both the credential verifier and identity resolver
// sides of the service with a static user set.
type fakeDirectory struct {
	users map[string]Identity // username -> identity
	pass  map[string]string   // username -> password
}

func (d *fakeDirectory) VerifyCredentials(_ context.Context, username, password string) (Identity, error) {
	id, ok := d.users[username]
	if !ok || d.pass[username] != password {
		return Identity{}, ErrInvalidCredentials
	}
	return id, nil
}

func (d *fakeDirectory) ResolveIdentity(_ context.Context, userID string) (Identity, error) {
	for _, id := range d.users {
		if id.UserID == userID {
			return id, nil
		}
	}
	return Identity{}, ErrInvalidCredentials
}

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()

	cfg := testCodecConfig()
	codec, err := NewJWTCodec(cfg)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}

	dir := &fakeDirectory{
		users: map[string]Identity{
			"alice": {UserID: "u-alice", Username: "alice", Role: "USER"},
			"root":  {UserID: "u-root", Username: "root", Role: "ADMIN"},
		},
		pass: map[string]string{
			"alice": "correct",
			"root":  "toor-toor",
		},
	}

	store := NewMemoryStore()
	return NewService(cfg, codec, store, dir, dir), store
}

func TestServiceLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	issued, err := svc.Login(ctx, now, "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if issued.AccessToken == "" || issued.RefreshToken == "" {
		t.Fatal("missing tokens")
	}
	if len(issued.RefreshToken) < 36 {
		t.Fatalf("refresh token too short: %d chars", len(issued.RefreshToken))
	}
	if want := now.Add(900 * time.Second); !issued.AccessExp.Equal(want) {
		t.Fatalf("access exp = %v, want %v", issued.AccessExp, want)
	}
	if want := now.Add(30 * 24 * time.Hour); !issued.RefreshExp.Equal(want) {
		t.Fatalf("refresh exp = %v, want %v", issued.RefreshExp, want)
	}

	claims, err := svc.VerifyAccessToken(issued.AccessToken, now)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != "u-alice" || claims.Username != "alice" || claims.Role != "USER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestServiceLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	cases := []struct{ user, pass string }{
		{"alice", "wrong"},
		{"nobody", "correct"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Login(ctx, now, tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%q): got %v, want ErrInvalidCredentials", tc.user, err)
		}
	}

	// No refresh token may be created on a failed login.
	if recs, _ := store.ListByUser(ctx, "u-alice"); len(recs) != 0 {
		t.Fatalf("failed login left %d records", len(recs))
	}
}

func TestServiceLoginNeverStoresPlaintext(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := svc.Login(ctx, now, "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	recs, err := store.ListByUser(ctx, "u-alice")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.TokenHash == issued.RefreshToken {
		t.Fatal("store holds the plaintext refresh token")
	}
	if rec.TokenHash != hashRefreshTokenHex(issued.RefreshToken) {
		t.Fatal("stored hash does not match the issued token")
	}
	if rec.Revoked {
		t.Fatal("fresh record must not be revoked")
	}
}

func TestServiceRefresh(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	issued, err := svc.Login(ctx, now, "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	later := now.Add(10 * time.Minute)
	tok, exp, err := svc.Refresh(ctx, later, issued.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if tok == issued.AccessToken {
		t.Fatal("refresh must mint a new access token")
	}
	if want := later.Add(900 * time.Second); !exp.Equal(want) {
		t.Fatalf("exp = %v, want %v", exp, want)
	}

	claims, err := svc.VerifyAccessToken(tok, later)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != "u-alice" {
		t.Fatalf("subject = %q", claims.UserID)
	}
	if !claims.IssuedAt.Equal(later) {
		t.Fatalf("iat = %v, want %v", claims.IssuedAt, later)
	}

	// The same refresh token remains usable; no rotation happens.
	if _, _, err := svc.Refresh(ctx, later.Add(time.Minute), issued.RefreshToken); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
}

func TestServiceRefreshFailures(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Unknown token.
	if _, _, err := svc.Refresh(ctx, now, "never-issued"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("unknown token: got %v, want ErrTokenNotFound", err)
	}
	if _, _, err := svc.Refresh(ctx, now, ""); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("empty token: got %v, want ErrTokenNotFound", err)
	}

	// Expired but not revoked.
	issued, err := svc.Login(ctx, now, "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	afterExpiry := issued.RefreshExp.Add(time.Second)
	if _, _, err := svc.Refresh(ctx, afterExpiry, issued.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token: got %v, want ErrTokenExpired", err)
	}

	// Revoked wins over expired.
	if err := svc.Logout(ctx, issued.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, afterExpiry, issued.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("revoked+expired token: got %v, want ErrTokenRevoked", err)
	}

	recs, _ := store.ListByUser(ctx, "u-alice")
	if len(recs) != 1 || !recs[0].Revoked {
		t.Fatalf("record not revoked: %+v", recs)
	}
}

func TestServiceRefreshExpiryBoundary(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	issued, err := svc.Login(ctx, now, "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Exactly at expiresAt the token still refreshes (rejection requires now > expiresAt).
	if _, _, err := svc.Refresh(ctx, issued.RefreshExp, issued.RefreshToken); err != nil {
		t.Fatalf("Refresh at expiry instant: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, issued.RefreshExp.Add(time.Nanosecond), issued.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Refresh past expiry: got %v, want ErrTokenExpired", err)
	}
}

func TestServiceLogoutIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	issued, err := svc.Login(ctx, now, "alice", "correct")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, issued.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// Second logout with the same token is a no-op.
	if err := svc.Logout(ctx, issued.RefreshToken); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	// Logout with no token at all never errors.
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("empty Logout: %v", err)
	}
	if err := svc.Logout(ctx, "unknown-token"); err != nil {
		t.Fatalf("unknown Logout: %v", err)
	}

	// The revoked token stays rejected.
	if _, _, err := svc.Refresh(ctx, now, issued.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("got %v, want ErrTokenRevoked", err)
	}
}

func TestServiceSessions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	first, err := svc.Login(ctx, base, "alice", "correct")
	if err != nil {
		t.Fatalf("Login 1: %v", err)
	}
	if _, err := svc.Login(ctx, base.Add(time.Minute), "alice", "correct"); err != nil {
		t.Fatalf("Login 2: %v", err)
	}
	if err := svc.Logout(ctx, first.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	recs, err := svc.Sessions(ctx, "u-alice")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	// Newest first; the older one is the revoked login.
	if recs[0].Revoked || !recs[1].Revoked {
		t.Fatalf("unexpected revocation state: %+v", recs)
	}
}

// failingCodec rejects every signing attempt.
type failingCodec struct{}

func (failingCodec) Issue(Identity, time.Time) (string, time.Time, error) {
	return "", time.Time{}, errors.New("sign: key unavailable")
}

func (failingCodec) Verify(string, time.Time) (AccessClaims, error) {
	return AccessClaims{}, ErrTokenMalformed
}

func TestLoginSigningFailureLeavesNoRecord(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{
		users: map[string]Identity{
			"alice": {UserID: "u-alice", Username: "alice", Role: "USER"},
		},
		pass: map[string]string{"alice": "correct"},
	}
	store := NewMemoryStore()
	svc := NewService(DefaultConfig(), failingCodec{}, store, dir, dir)

	ctx := context.Background()
	if _, err := svc.Login(ctx, time.Now().UTC(), "alice", "correct"); err == nil {
		t.Fatal("expected login to fail when signing fails")
	}

	recs, err := store.ListByUser(ctx, "u-alice")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("failed login left %d refresh-token records behind", len(recs))
	}
}
