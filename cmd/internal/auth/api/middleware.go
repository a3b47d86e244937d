package api

import (
	"net/http"
	"time"

	"gate/cmd/identity"
)

// Authenticate is the request authenticator middleware.
//
// It extracts the bearer access token from the Authorization header, verifies
// it, and installs a principal into the request context. A missing header,
// wrong scheme, or any verification failure leaves the request anonymous;
// this middleware never rejects a request. Downstream authorization checks
// decide what anonymous may do.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.sessions.VerifyAccessToken(token, time.Now().UTC())
		if err != nil {
			h.log.Debug("auth.authenticate.reject", "err", err)
			next.ServeHTTP(w, r)
			return
		}

		p := Principal{
			Subject:   claims.UserID,
			Username:  claims.Username,
			Role:      claims.Role,
			Authority: "ROLE_" + claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// requireAuth rejects anonymous requests with 401.
func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return Principal{}, false
	}
	return p, true
}

// requireRole rejects anonymous requests with 401 and authenticated requests
// lacking the role with 403.
func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, role identity.Role) (Principal, bool) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return Principal{}, false
	}
	if p.Authority != "ROLE_"+string(role) {
		writeError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
		return Principal{}, false
	}
	return p, true
}
