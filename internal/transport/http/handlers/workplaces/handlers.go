package workplaceshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/audit"
	"rota/internal/domain/auth"
	"rota/internal/domain/workplace"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service *workplace.Service
	Audit   *audit.Service
}

func NewHandler(service *workplace.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/workplaces", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapScheduleRead)).Get("/", h.handleList)
		r.With(middleware.RequireCapability(auth.CapScheduleRead)).Get("/{workplaceID}", h.handleGet)
		r.With(middleware.RequireCapability(auth.CapWorkplacesManage)).Post("/", h.handleCreate)
		r.With(middleware.RequireCapability(auth.CapWorkplacesManage)).Put("/{workplaceID}", h.handleUpdate)
		r.With(middleware.RequireCapability(auth.CapWorkplacesManage)).Post("/{workplaceID}/archive", h.handleArchive)
		r.With(middleware.RequireCapability(auth.CapWorkplacesManage)).Post("/{workplaceID}/restore", h.handleRestore)
		r.With(middleware.RequireCapability(auth.CapWorkplacesManage)).Delete("/{workplaceID}", h.handleDelete)
	})
}

type workplacePayload struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Address string `json:"address"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 50, 200)
	result, err := h.Service.List(r.Context(), user.OrgID, workplace.ListFilter{
		IncludeArchived: r.URL.Query().Get("includeArchived") == "true",
		Search:          r.URL.Query().Get("search"),
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workplace_list_failed", "failed to list workplaces", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	wp, err := h.Service.Get(r.Context(), user.OrgID, chi.URLParam(r, "workplaceID"))
	if err != nil {
		h.failWorkplace(w, err, reqID)
		return
	}
	api.Success(w, wp, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload workplacePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Service.Create(r.Context(), user.OrgID, workplace.Workplace{
		Code:    payload.Code,
		Name:    payload.Name,
		Color:   payload.Color,
		Address: payload.Address,
	})
	if err != nil {
		h.failWorkplace(w, err, reqID)
		return
	}

	h.audit(r, user, audit.ActionCreate, id, nil, payload)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	workplaceID := chi.URLParam(r, "workplaceID")

	var payload workplacePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	before, err := h.Service.Get(r.Context(), user.OrgID, workplaceID)
	if err != nil {
		h.failWorkplace(w, err, reqID)
		return
	}

	if err := h.Service.Update(r.Context(), user.OrgID, workplace.Workplace{
		ID:      workplaceID,
		Code:    payload.Code,
		Name:    payload.Name,
		Color:   payload.Color,
		Address: payload.Address,
	}); err != nil {
		h.failWorkplace(w, err, reqID)
		return
	}

	h.audit(r, user, audit.ActionUpdate, workplaceID, before, payload)
	api.Success(w, map[string]string{"id": workplaceID}, reqID)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionTrash, "archived", h.Service.Archive)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionRestore, "active", h.Service.Restore)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action, state string, op func(ctx context.Context, orgID, workplaceID string) error) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	workplaceID := chi.URLParam(r, "workplaceID")

	if err := op(r.Context(), user.OrgID, workplaceID); err != nil {
		h.failWorkplace(w, err, reqID)
		return
	}

	h.audit(r, user, action, workplaceID, nil, map[string]string{"state": state})
	api.Success(w, map[string]string{"id": workplaceID, "state": state}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	workplaceID := chi.URLParam(r, "workplaceID")

	if err := h.Service.Delete(r.Context(), user.OrgID, workplaceID); err != nil {
		h.failWorkplace(w, err, reqID)
		return
	}

	h.audit(r, user, audit.ActionDelete, workplaceID, nil, nil)
	api.Success(w, map[string]string{"id": workplaceID}, reqID)
}

func (h *Handler) failWorkplace(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, workplace.ErrDuplicateCode):
		api.Fail(w, http.StatusConflict, "duplicate_code", "a workplace with this code already exists", reqID)
	case errors.Is(err, workplace.ErrInUse):
		api.Fail(w, http.StatusConflict, "workplace_in_use", "workplace is referenced by assignments", reqID)
	case errors.Is(err, workplace.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "workplace not found", reqID)
	case errors.Is(err, workplace.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "workplace_failed", "failed to process workplace", reqID)
	}
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, workplaceID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.OrgID, user.UserID, action, "workplace", workplaceID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
