package notificationshandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/auth"
	"rota/internal/domain/notifications"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Post("/{notificationID}/read", h.handleMarkRead)
		r.With(middleware.RequireAuth).Post("/read-all", h.handleMarkAllRead)
		r.With(middleware.RequireCapability(auth.CapSystemAdmin)).Get("/settings", h.handleSettings)
		r.With(middleware.RequireCapability(auth.CapSystemAdmin)).Put("/settings", h.handleUpdateSettings)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 100, 500)
	unread, err := h.Service.UnreadCount(r.Context(), user.OrgID, user.UserID)
	if err != nil {
		slog.Warn("notification count failed", "err", err)
	}

	items, err := h.Service.List(r.Context(), user.OrgID, user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", reqID)
		return
	}

	w.Header().Set("X-Unread-Count", strconv.Itoa(unread))
	api.Success(w, map[string]any{"notifications": items, "unread": unread}, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	notificationID := chi.URLParam(r, "notificationID")

	if err := h.Service.MarkRead(r.Context(), user.OrgID, user.UserID, notificationID); err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "notification not found", reqID)
		return
	}
	api.Success(w, map[string]string{"id": notificationID}, reqID)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.MarkAllRead(r.Context(), user.OrgID, user.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to mark notifications read", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "ok"}, reqID)
}

type settingsPayload struct {
	EmailEnabled bool   `json:"emailEnabled"`
	EmailFrom    string `json:"emailFrom"`
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	enabled, from, err := h.Service.GetSettings(r.Context(), user.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to load settings", reqID)
		return
	}
	api.Success(w, settingsPayload{EmailEnabled: enabled, EmailFrom: from}, reqID)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Service.UpdateSettings(r.Context(), user.OrgID, payload.EmailEnabled, payload.EmailFrom); err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to update settings", reqID)
		return
	}
	api.Success(w, payload, reqID)
}
