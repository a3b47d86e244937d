// Package session implements Gate's dual-token session model.
//
// Access tokens are short-lived HS256-signed JWTs and are never stored
// server-side. Refresh tokens are opaque random strings tracked in Postgres
// by hash only (HMAC-SHA256 when GATE_TOKEN_HMAC_KEY is set; otherwise
// SHA-256 for dev). A refresh token stays valid until its TTL or an explicit
// logout; issuing a fresh access token does not rotate it.
//
// Transport (HTTP) integration is intentionally out of scope here.
package session
