package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gate/cmd/identity"
	"gate/cmd/internal/auth/session"
)

// Handler wires HTTP auth endpoints to the identity store and session service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	users    identity.Store
	sessions *session.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, users identity.Store, sessions *session.Service) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil {
		return nil, errors.New("api: nil user store")
	}
	if sessions == nil {
		return nil, errors.New("api: nil session service")
	}
	return &Handler{log: log, cfg: cfg, users: users, sessions: sessions}, nil
}

// Register wires routes onto the provided mux. Every route passes through the
// authenticator so downstream handlers can read the principal.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("POST /api/auth/password-reset/request", h.handlePasswordResetRequest)
	mux.HandleFunc("POST /api/auth/password-reset/confirm", h.handlePasswordResetConfirm)
	mux.HandleFunc("GET /api/users/me", h.handleMe)
	mux.HandleFunc("GET /api/users/me/sessions", h.handleMySessions)
	mux.HandleFunc("GET /api/admin/users", h.handleAdminUsers)
	mux.HandleFunc("GET /api/admin/users/{id}", h.handleAdminUserByID)
	mux.HandleFunc("GET /api/hello", h.handleHello)
	mux.HandleFunc("GET /api/health", h.handleHealth)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	u, err := h.users.CreateUser(r.Context(), identity.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     identity.RoleUser,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "conflict", "username or email already taken")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "username, email and password are required")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.log.Info("auth.register.ok", "user_id", u.ID, "username", u.Username)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	issued, err := h.sessions.Login(ctx, now, username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.log.Info("auth.login.fail", "username", username)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		h.log.Error("auth.login.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	// Best-effort bookkeeping; a failed stamp must not fail the login.
	if u, err := h.users.GetUserByUsername(ctx, username); err == nil {
		if err := h.users.TouchLastLogin(ctx, u.ID, now); err != nil {
			h.log.Warn("auth.login.touch.fail", "err", err)
		}
	}

	h.log.Info("auth.login.ok", "username", username)
	h.setRefreshCookie(w, issued.RefreshToken, h.sessions.RefreshTokenTTL())
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: issued.AccessToken,
		ExpiresIn:   int64(h.sessions.AccessTokenTTL() / time.Second),
		TokenType:   "Bearer",
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := h.refreshTokenFromCookie(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
		return
	}

	now := time.Now().UTC()
	accessToken, _, err := h.sessions.Refresh(r.Context(), now, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrTokenNotFound),
			errors.Is(err, session.ErrTokenRevoked),
			errors.Is(err, session.ErrTokenExpired),
			errors.Is(err, session.ErrInvalidCredentials):
			// The client never learns which condition hit.
			h.log.Info("auth.refresh.reject", "reason", err.Error())
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
		default:
			h.log.Error("auth.refresh.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(h.sessions.AccessTokenTTL() / time.Second),
		TokenType:   "Bearer",
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if refreshToken, ok := h.refreshTokenFromCookie(r); ok {
		if err := h.sessions.Logout(r.Context(), refreshToken); err != nil {
			h.log.Error("auth.logout.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
			return
		}
	}

	// The cookie is cleared whether or not a matching token existed.
	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *Handler) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	// No reset email is ever sent and no state changes. The response is the
	// same for known and unknown addresses.
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "if the account exists, a password reset email has been sent",
	})
}

func (h *Handler) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	// Reset tokens are never issued, so no confirmation can succeed.
	writeError(w, http.StatusBadRequest, "invalid_token", "invalid or expired password reset token")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	u, err := h.users.GetUserByID(r.Context(), p.Subject)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "user not found")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleMySessions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	recs, err := h.sessions.Sessions(r.Context(), p.Subject)
	if err != nil {
		h.log.Error("auth.sessions.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]sessionInfoResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toSessionInfoResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, identity.RoleAdmin); !ok {
		return
	}

	page, size := h.pageParams(r)
	users, total, err := h.users.ListUsers(r.Context(), identity.ListUsersInput{Page: page, Size: size})
	if err != nil {
		h.log.Error("auth.admin.users.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	content := make([]userResponse, 0, len(users))
	for _, u := range users {
		content = append(content, toUserResponse(u))
	}

	totalPages := total / int64(size)
	if total%int64(size) != 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, userPageResponse{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	})
}

func (h *Handler) handleAdminUserByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, identity.RoleAdmin); !ok {
		return
	}

	u, err := h.users.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("auth.admin.user.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleHello(w http.ResponseWriter, r *http.Request) {
	if p, ok := PrincipalFrom(r.Context()); ok {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Hello, " + p.Username + "!"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello, anonymous!"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}
