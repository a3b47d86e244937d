package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for unknown users and wrong
	// passwords alike, so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenMalformed is returned when an access token cannot be decoded.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrBadSignature is returned when an access token's signature does not
	// verify (tampered token or wrong key).
	ErrBadSignature = errors.New("bad signature")

	// ErrTokenExpired is returned when an access or refresh token is past its
	// expiry instant.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenNotFound is returned when a refresh token does not match any
	// stored record.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenRevoked is returned when the matching refresh token has been
	// revoked. Revocation is permanent.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
