package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// minJWTSecretBytes is the minimum accepted HS256 key length.
// Shorter keys make the HMAC brute-forceable offline.
const minJWTSecretBytes = 32

// Config defines all runtime configuration for the session subsystem.
//
// It controls access-token TTL, refresh-token TTL, refresh entropy size, and
// the HS256 signing secret.
//
// This struct is intentionally explicit and environment-driven so that
// production deployments can tune security parameters without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of access tokens.
	Issuer string

	// AccessTokenTTL defines the lifetime of JWT access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the lifetime of opaque refresh tokens.
	RefreshTokenTTL time.Duration

	// RefreshTokenBytes defines the number of random bytes used
	// to generate opaque refresh tokens.
	RefreshTokenBytes int

	// JWTSecret is the symmetric key used to sign HS256 access tokens.
	// Rotating it invalidates all outstanding access tokens immediately,
	// but leaves refresh tokens untouched.
	JWTSecret []byte
}

// DefaultConfig returns defaults suitable for development.
// The signing secret has no default and must always be provided.
func DefaultConfig() Config {
	return Config{
		Issuer:            "gate",
		AccessTokenTTL:    900 * time.Second,
		RefreshTokenTTL:   30 * 24 * time.Hour,
		RefreshTokenBytes: 32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - GATE_JWT_SECRET (at least 32 bytes)
//
// Optional:
//   - GATE_AUTH_ISSUER
//   - GATE_AUTH_ACCESS_TTL_SECONDS
//   - GATE_AUTH_REFRESH_TTL_DAYS
//   - GATE_AUTH_REFRESH_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("GATE_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("GATE_AUTH_ACCESS_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = time.Duration(n) * time.Second
	}

	if v := os.Getenv("GATE_AUTH_REFRESH_TTL_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenTTL = time.Duration(n) * 24 * time.Hour
	}

	if v := os.Getenv("GATE_AUTH_REFRESH_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenBytes = n
	}

	secret := strings.TrimSpace(os.Getenv("GATE_JWT_SECRET"))
	if len(secret) < minJWTSecretBytes {
		return Config{}, ErrConfig
	}
	cfg.JWTSecret = []byte(secret)

	return cfg, nil
}
