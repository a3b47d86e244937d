package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the minimal user view needed to mint an access token.
// It is read-only here; the identity package owns the full record.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// AccessClaims is the decoded claim set of a verified access token.
type AccessClaims struct {
	UserID    string
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// AccessTokenCodec issues and verifies short-lived access tokens.
//
// Tokens are self-contained: verification needs no server-side lookup, so a
// token stays valid until its expiry even if the user is deactivated in the
// meantime. The refresh flow is where server-side state is consulted.
type AccessTokenCodec interface {
	Issue(identity Identity, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

type jwtClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type jwtHS256Codec struct {
	issuer string
	ttl    time.Duration
	secret []byte
}

// NewJWTCodec builds an AccessTokenCodec signing HS256 JWTs with the
// configured symmetric secret.
func NewJWTCodec(cfg Config) (AccessTokenCodec, error) {
	if len(cfg.JWTSecret) < minJWTSecretBytes {
		return nil, ErrConfig
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}
	return &jwtHS256Codec{
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		secret: cfg.JWTSecret,
	}, nil
}

func (c *jwtHS256Codec) Issue(identity Identity, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.ttl)

	claims := jwtClaims{
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (c *jwtHS256Codec) Verify(token string, now time.Time) (AccessClaims, error) {
	var claims jwtClaims

	// The time func is pinned to the caller's clock so expiry is evaluated
	// against the same instant the caller reasons about. A token is rejected
	// at exactly its expiresAt instant.
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return AccessClaims{}, mapJWTError(err)
	}

	if claims.Subject == "" {
		return AccessClaims{}, ErrTokenMalformed
	}

	out := AccessClaims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		Issuer:   claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	default:
		return ErrTokenMalformed
	}
}
