// Package token provides token hashing primitives for Gate.
//
// It is the single source of truth for refresh-token hashing behavior.
//
// Design goals:
//   - Default mode: SHA-256(token). A fixed deterministic digest so the store
//     can look records up by exact hash equality.
//   - Hardened mode: HMAC-SHA256(token, key) when GATE_TOKEN_HMAC_KEY is set.
//     This keeps the lookup-by-value contract while blunting precomputation
//     against an exfiltrated store.
//   - Stable 64-char hex output for storage and constant-time comparison.
package token
