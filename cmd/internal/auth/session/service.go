package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// CredentialVerifier checks a username/password pair against stored
// credentials. It must return ErrInvalidCredentials for unknown users,
// wrong passwords, and inactive accounts alike.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (Identity, error)
}

// IdentityResolver resolves a user ID to its current identity.
// The refresh flow uses it to mint access tokens with fresh claims.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (Identity, error)
}

// Service implements the high-level session operations for Gate.
//
// It issues token pairs on login, mints new access tokens on refresh, and
// revokes refresh tokens on logout. It has no mutable state of its own;
// everything shared lives behind the Store.
type Service struct {
	cfg         Config
	codec       AccessTokenCodec
	store       Store
	credentials CredentialVerifier
	identities  IdentityResolver
}

// Issued is the result of a successful login.
// RefreshToken is the plaintext and exists only in this value and in the
// client's cookie; the store keeps its hash.
type Issued struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// NewService constructs a Service.
func NewService(cfg Config, codec AccessTokenCodec, store Store, credentials CredentialVerifier, identities IdentityResolver) *Service {
	return &Service{
		cfg:         cfg,
		codec:       codec,
		store:       store,
		credentials: credentials,
		identities:  identities,
	}
}

// Login verifies credentials and, on success, issues an access token and a
// fresh refresh token.
//
// Refresh tokens are opaque random strings and must never be persisted in
// plaintext. Only the hash (hex) is handed to the store.
func (s *Service) Login(ctx context.Context, now time.Time, username, password string) (Issued, error) {
	identity, err := s.credentials.VerifyCredentials(ctx, username, password)
	if err != nil {
		return Issued{}, err
	}

	// Sign first: a failed signing must not leave a live record behind.
	accessToken, accessExp, err := s.codec.Issue(identity, now)
	if err != nil {
		return Issued{}, err
	}

	refreshPlain, refreshHash, err := newOpaqueRefreshToken(s.cfg.RefreshTokenBytes)
	if err != nil {
		return Issued{}, err
	}
	refreshExp := now.Add(s.cfg.RefreshTokenTTL)

	if _, err := s.store.Create(ctx, now, identity.UserID, refreshHash, refreshExp); err != nil {
		return Issued{}, err
	}

	return Issued{
		AccessToken:  accessToken,
		AccessExp:    accessExp,
		RefreshToken: refreshPlain,
		RefreshExp:   refreshExp,
	}, nil
}

// Refresh validates a refresh token and mints a new access token.
//
// The refresh token itself is left untouched: it stays valid until its own
// expiry or an explicit logout. Classification order matters: a revoked
// record reports ErrTokenRevoked even when it is also past its expiry.
func (s *Service) Refresh(ctx context.Context, now time.Time, refreshPlain string) (accessToken string, exp time.Time, err error) {
	refreshPlain = strings.TrimSpace(refreshPlain)
	// Basic sanity bounds to avoid pathological inputs.
	if refreshPlain == "" || len(refreshPlain) > 4096 {
		return "", time.Time{}, ErrTokenNotFound
	}

	rec, err := s.store.FindByHash(ctx, hashRefreshTokenHex(refreshPlain))
	if err != nil {
		return "", time.Time{}, err
	}

	if rec.Revoked {
		return "", time.Time{}, ErrTokenRevoked
	}
	if now.After(rec.ExpiresAt) {
		return "", time.Time{}, ErrTokenExpired
	}

	identity, err := s.identities.ResolveIdentity(ctx, rec.UserID)
	if err != nil {
		return "", time.Time{}, err
	}

	return s.codec.Issue(identity, now)
}

// Logout revokes the refresh token matching the given plaintext.
//
// It is idempotent from the caller's perspective: an unknown or already
// revoked token is not an error.
func (s *Service) Logout(ctx context.Context, refreshPlain string) error {
	refreshPlain = strings.TrimSpace(refreshPlain)
	if refreshPlain == "" || len(refreshPlain) > 4096 {
		return nil
	}

	rec, err := s.store.FindByHash(ctx, hashRefreshTokenHex(refreshPlain))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return err
	}

	return s.store.Revoke(ctx, rec.ID)
}

// VerifyAccessToken verifies a bearer access token.
// Purely CPU-bound; no store lookup is involved.
func (s *Service) VerifyAccessToken(token string, now time.Time) (AccessClaims, error) {
	return s.codec.Verify(token, now)
}

// Sessions lists all refresh-token records for a user, newest first,
// including expired and revoked ones.
func (s *Service) Sessions(ctx context.Context, userID string) ([]Record, error) {
	return s.store.ListByUser(ctx, userID)
}

// AccessTokenTTL exposes the configured access-token lifetime.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.cfg.AccessTokenTTL
}

// RefreshTokenTTL exposes the configured refresh-token lifetime.
func (s *Service) RefreshTokenTTL() time.Duration {
	return s.cfg.RefreshTokenTTL
}
