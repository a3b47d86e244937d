package api

import (
	"net/http"
	"strconv"

	"gate/cmd/identity"
	"gate/cmd/internal/auth/session"
)

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func toSessionInfoResponse(rec session.Record) sessionInfoResponse {
	return sessionInfoResponse{
		ID:        rec.ID,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
		Revoked:   rec.Revoked,
	}
}

// pageParams parses ?page= and ?size= with defaults and clamping.
func (h *Handler) pageParams(r *http.Request) (page, size int) {
	page = 0
	size = h.cfg.DefaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
		}
	}
	if size > h.cfg.MaxPageSize {
		size = h.cfg.MaxPageSize
	}
	return page, size
}
