// Package api is Gate's HTTP boundary.
//
// It wires the session service and the identity store to HTTP endpoints
// (register, login, refresh, logout, user and admin surfaces) and provides
// the request authenticator middleware that turns a bearer access token into
// a request-scoped principal. Token verification failures never fail a
// request here; the request simply proceeds anonymous and endpoint-level
// checks reject it.
package api
