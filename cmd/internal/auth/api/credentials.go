package api

import (
	"context"
	"strings"

	"gate/cmd/identity"
	"gate/cmd/internal/auth/session"
	"gate/cmd/security/password"
)

// CredentialDirectory adapts the identity store to the session service's
// credential verifier and identity resolver contracts.
//
// Unknown users, wrong passwords, and inactive accounts are reported
// identically as ErrInvalidCredentials so callers cannot enumerate usernames.
type CredentialDirectory struct {
	users     identity.Store
	passwords password.Config

	// dummyHash is verified for unknown users so a login attempt against a
	// missing account costs the same as one against a real account.
	dummyHash string
}

// NewCredentialDirectory builds the adapter.
func NewCredentialDirectory(users identity.Store, passwords password.Config) (*CredentialDirectory, error) {
	dummy, err := passwords.Hash("dummy-password-for-timing-only")
	if err != nil {
		return nil, err
	}
	return &CredentialDirectory{
		users:     users,
		passwords: passwords,
		dummyHash: dummy,
	}, nil
}

// VerifyCredentials checks a username/password pair.
func (d *CredentialDirectory) VerifyCredentials(ctx context.Context, username, pass string) (session.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || pass == "" {
		_, _ = d.passwords.Verify(d.dummyHash, pass)
		return session.Identity{}, session.ErrInvalidCredentials
	}

	u, err := d.users.GetUserByUsername(ctx, username)
	if err != nil {
		if identity.IsNotFound(err) || identity.IsInvalidInput(err) {
			_, _ = d.passwords.Verify(d.dummyHash, pass)
			return session.Identity{}, session.ErrInvalidCredentials
		}
		return session.Identity{}, err
	}

	ok, err := d.passwords.Verify(u.PasswordHash, pass)
	if err != nil || !ok {
		return session.Identity{}, session.ErrInvalidCredentials
	}
	if !u.Active {
		return session.Identity{}, session.ErrInvalidCredentials
	}

	return session.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	}, nil
}

// ResolveIdentity resolves a user ID to its current identity.
// Deactivated users resolve to ErrInvalidCredentials so a refresh for a
// disabled account fails closed.
func (d *CredentialDirectory) ResolveIdentity(ctx context.Context, userID string) (session.Identity, error) {
	u, err := d.users.GetUserByID(ctx, userID)
	if err != nil {
		if identity.IsNotFound(err) {
			return session.Identity{}, session.ErrInvalidCredentials
		}
		return session.Identity{}, err
	}
	if !u.Active {
		return session.Identity{}, session.ErrInvalidCredentials
	}
	return session.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	}, nil
}

var _ session.CredentialVerifier = (*CredentialDirectory)(nil)
var _ session.IdentityResolver = (*CredentialDirectory)(nil)
