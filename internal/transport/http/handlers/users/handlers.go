package usershandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rota/internal/domain/audit"
	"rota/internal/domain/auth"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Audit   *audit.Service
}

func NewHandler(service *auth.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapUsersManage)).Get("/", h.handleList)
		r.With(middleware.RequireCapability(auth.CapUsersManage)).Post("/", h.handleCreate)
		r.With(middleware.RequireCapability(auth.CapUsersManage)).Put("/{userID}", h.handleUpdate)
	})
}

type userPayload struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
	Active   *bool  `json:"active"`
}

var allowedRoles = []string{auth.RoleUser, auth.RoleManager, auth.RoleSuperAdmin}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 50, 200)
	users, total, err := h.Service.ListUsers(r.Context(), user.OrgID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", reqID)
		return
	}
	api.Success(w, map[string]any{"users": users, "total": total}, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("role", payload.Role, "role is required")
	v.Enum("role", payload.Role, allowedRoles, "unknown role")
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if v.Reject(w, reqID) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}

	id, err := h.Service.CreateUser(r.Context(), user.OrgID, auth.User{
		FullName: strings.TrimSpace(payload.FullName),
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Role:     strings.ToUpper(payload.Role),
	}, hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			api.Fail(w, http.StatusConflict, "duplicate_email", "a user with this email already exists", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}

	h.audit(r, user, audit.ActionCreate, id, map[string]string{"email": payload.Email, "role": payload.Role})
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("role", payload.Role, "role is required")
	v.Enum("role", payload.Role, allowedRoles, "unknown role")
	if v.Reject(w, reqID) {
		return
	}

	// An admin cannot deactivate or demote themselves; someone must be
	// left holding the keys.
	if userID == user.UserID {
		demoted := strings.ToUpper(payload.Role) != user.Role
		deactivated := payload.Active != nil && !*payload.Active
		if demoted || deactivated {
			api.Fail(w, http.StatusConflict, "self_lockout", "cannot demote or deactivate your own account", reqID)
			return
		}
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}

	if err := h.Service.UpdateUser(r.Context(), user.OrgID, userID, auth.User{
		FullName: strings.TrimSpace(payload.FullName),
		Role:     strings.ToUpper(payload.Role),
		Active:   active,
	}); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", reqID)
		return
	}

	h.audit(r, user, audit.ActionUpdate, userID, map[string]any{"role": payload.Role, "active": active})
	api.Success(w, map[string]string{"id": userID}, reqID)
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, userID string, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.OrgID, user.UserID, action, "user", userID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
