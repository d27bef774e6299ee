package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"rota/internal/domain/audit"
	"rota/internal/domain/auth"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service    *auth.Service
	Audit      *audit.Service
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewHandler(service *auth.Service, auditSvc *audit.Service, secret string, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Secret: secret, AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/refresh", h.handleRefresh)
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/auth/request-reset", h.handleRequestReset)
	r.Post("/auth/reset", h.handleResetPassword)
	r.Post("/auth/totp/setup", h.handleTOTPSetup)
	r.Post("/auth/totp/enable", h.handleTOTPEnable)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type totpCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	user, err := h.Service.FindActiveUserByEmail(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	if user.TOTPActive {
		if payload.TOTPCode == "" {
			api.Fail(w, http.StatusUnauthorized, "totp_required", "totp code required", reqID)
			return
		}
		if user.TOTPSecret == "" || !totp.Validate(payload.TOTPCode, user.TOTPSecret) {
			api.Fail(w, http.StatusUnauthorized, "totp_invalid", "invalid totp code", reqID)
			return
		}
	}

	pair, err := h.issueTokens(r, user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue tokens", reqID)
		return
	}

	if err := h.Service.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}
	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.OrgID, user.ID, audit.ActionLogin, "user", user.ID, reqID, shared.ClientIP(r), nil, nil); err != nil {
			slog.Warn("audit login failed", "err", err)
		}
	}

	api.Success(w, map[string]any{
		"token":        pair.access,
		"refreshToken": pair.refresh,
		"user": map[string]string{
			"id":       user.ID,
			"orgId":    user.OrgID,
			"role":     user.Role,
			"fullName": user.FullName,
		},
	}, reqID)
}

type tokenPair struct {
	access  string
	refresh string
}

func (h *Handler) issueTokens(r *http.Request, user auth.AuthUser) (tokenPair, error) {
	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		return tokenPair{}, err
	}
	expires := time.Now().Add(h.RefreshTTL)
	if err := h.Service.CreateSession(r.Context(), user.ID, auth.HashToken(refresh), expires); err != nil {
		return tokenPair{}, err
	}

	access, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID: user.ID,
		OrgID:  user.OrgID,
		Role:   user.Role,
	}, h.AccessTTL)
	if err != nil {
		return tokenPair{}, err
	}
	return tokenPair{access: access, refresh: refresh}, nil
}

// handleRefresh deliberately skips the bearer token: the access token may
// already be expired, the session row is the source of truth.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.RefreshToken == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "refresh token required", reqID)
		return
	}

	oldHash := auth.HashToken(payload.RefreshToken)
	userID, err := h.Service.SessionUserID(r.Context(), oldHash)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", reqID)
		return
	}
	user, err := h.Service.UserByID(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "account disabled", reqID)
		return
	}

	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to rotate session", reqID)
		return
	}
	expires := time.Now().Add(h.RefreshTTL)
	if err := h.Service.RotateSession(r.Context(), user.ID, oldHash, auth.HashToken(refresh), expires); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to rotate session", reqID)
		return
	}

	access, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID: user.ID,
		OrgID:  user.OrgID,
		Role:   user.Role,
	}, h.AccessTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}
	api.Success(w, map[string]string{"token": access, "refreshToken": refresh}, reqID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if ok {
		var payload refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.RefreshToken != "" {
			if err := h.Service.RevokeSession(r.Context(), user.UserID, auth.HashToken(payload.RefreshToken)); err != nil {
				slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
			}
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

// handleRequestReset always answers with the same status so an attacker
// cannot probe which emails exist.
func (h *Handler) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if userID, err := h.Service.UserIDByEmail(r.Context(), payload.Email); err == nil {
		token, err := auth.NewOpaqueToken()
		if err != nil {
			slog.Warn("password reset token generation failed", "userId", userID, "err", err)
		} else {
			expires := time.Now().Add(2 * time.Hour)
			if err := h.Service.CreatePasswordReset(r.Context(), userID, auth.HashToken(token), expires); err != nil {
				slog.Warn("password reset insert failed", "userId", userID, "err", err)
			}
		}
	}

	api.Success(w, map[string]string{"status": "reset_requested"}, reqID)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if len(payload.NewPassword) < 8 {
		api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters", reqID)
		return
	}

	tokenHash := auth.HashToken(payload.Token)
	userID, err := h.Service.PasswordResetUserID(r.Context(), tokenHash)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to update password", reqID)
		return
	}
	if err := h.Service.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update password", reqID)
		return
	}
	if err := h.Service.MarkPasswordResetUsed(r.Context(), tokenHash); err != nil {
		slog.Warn("password reset mark used failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "password_reset"}, reqID)
}

func (h *Handler) handleTOTPSetup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Rota",
		AccountName: user.UserID,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "totp_setup_failed", "failed to generate totp secret", reqID)
		return
	}
	if err := h.Service.SetTOTPSecret(r.Context(), user.UserID, key.Secret()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "totp_setup_failed", "failed to store totp secret", reqID)
		return
	}

	api.Success(w, map[string]string{"secret": key.Secret(), "otpauthUrl": key.URL()}, reqID)
}

func (h *Handler) handleTOTPEnable(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload totpCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	authUser, err := h.Service.UserByID(r.Context(), user.UserID)
	if err != nil || authUser.TOTPSecret == "" {
		api.Fail(w, http.StatusBadRequest, "totp_missing", "totp setup required", reqID)
		return
	}
	if !totp.Validate(payload.Code, authUser.TOTPSecret) {
		api.Fail(w, http.StatusBadRequest, "totp_invalid", "invalid totp code", reqID)
		return
	}
	if err := h.Service.EnableTOTP(r.Context(), user.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "totp_enable_failed", "failed to enable totp", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "enabled"}, reqID)
}
