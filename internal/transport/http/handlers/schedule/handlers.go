package schedulehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/audit"
	"rota/internal/domain/auth"
	"rota/internal/domain/notifications"
	"rota/internal/domain/schedule"
	"rota/internal/platform/metrics"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service *schedule.Service
	Notify  *notifications.Service
	Audit   *audit.Service

	// MaxActiveWarnAfter is the active-assignment count above which the
	// create response carries an advisory warning.
	MaxActiveWarnAfter int
}

func NewHandler(service *schedule.Service, notify *notifications.Service, auditSvc *audit.Service, maxActiveWarnAfter int) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc, MaxActiveWarnAfter: maxActiveWarnAfter}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assignments", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapScheduleRead)).Get("/", h.handleList)
		r.With(middleware.RequireCapability(auth.CapScheduleRead)).Get("/{assignmentID}", h.handleGet)
		r.With(middleware.RequireCapability(auth.CapScheduleManage)).Post("/", h.handleCreate)
		r.With(middleware.RequireCapability(auth.CapScheduleManage)).Put("/{assignmentID}", h.handleUpdate)
		r.With(middleware.RequireCapability(auth.CapScheduleManage)).Post("/{assignmentID}/complete", h.handleComplete)
		r.With(middleware.RequireCapability(auth.CapScheduleManage)).Post("/{assignmentID}/trash", h.handleTrash)
		r.With(middleware.RequireCapability(auth.CapScheduleManage)).Post("/{assignmentID}/restore", h.handleRestore)
		r.With(middleware.RequireCapability(auth.CapScheduleManage)).Delete("/{assignmentID}", h.handleHardDelete)
	})
}

type shiftPayload struct {
	WorkDate string `json:"workDate"`
	StartAt  string `json:"startAt"`
	EndAt    string `json:"endAt"`
	Kind     string `json:"kind"`
}

type assignmentPayload struct {
	UserID      string         `json:"userId"`
	WorkplaceID string         `json:"workplaceId"`
	Status      string         `json:"status"`
	StartAt     string         `json:"startAt"`
	EndAt       string         `json:"endAt"`
	Shifts      []shiftPayload `json:"shifts"`
}

func (p assignmentPayload) toAssignment(v *shared.Validator) schedule.Assignment {
	out := schedule.Assignment{
		UserID:      p.UserID,
		WorkplaceID: p.WorkplaceID,
		Status:      p.Status,
	}
	v.Required("userId", p.UserID, "employee is required")
	v.Required("workplaceId", p.WorkplaceID, "workplace is required")

	start, ok := v.Date("startAt", p.StartAt)
	if ok {
		out.StartAt = start
	}
	if p.EndAt != "" {
		if end, ok := v.Date("endAt", p.EndAt); ok {
			out.EndAt = &end
			v.DateOrder("startAt", out.StartAt, "endAt", end)
		}
	}

	for _, sp := range p.Shifts {
		shift := schedule.Shift{Kind: sp.Kind}
		if date, err := time.Parse("2006-01-02", sp.WorkDate); err == nil {
			shift.WorkDate = date
		} else {
			v.Add("shifts", "work date must use YYYY-MM-DD")
			continue
		}
		startAt, err1 := shared.ParseDate(sp.StartAt)
		endAt, err2 := shared.ParseDate(sp.EndAt)
		if err1 != nil || err2 != nil || startAt.IsZero() || endAt.IsZero() {
			v.Add("shifts", "shift times must be RFC3339 timestamps")
			continue
		}
		shift.StartAt = startAt
		shift.EndAt = endAt
		if shift.Kind == "" {
			shift.Kind = schedule.ShiftKindDefault
		}
		v.Enum("shifts", shift.Kind, schedule.ShiftKinds, "unknown shift kind")
		out.Shifts = append(out.Shifts, shift)
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 50, 200)
	query := r.URL.Query()
	filter := schedule.ListFilter{
		Status:      query.Get("status"),
		UserID:      query.Get("userId"),
		WorkplaceID: query.Get("workplaceId"),
		Trashed:     query.Get("trashed") == "true",
		Limit:       page.Limit,
		Offset:      page.Offset,
	}

	result, err := h.Service.List(r.Context(), user.OrgID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignment_list_failed", "failed to list assignments", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	assignment, err := h.Service.Get(r.Context(), user.OrgID, chi.URLParam(r, "assignmentID"))
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "assignment_get_failed", "failed to load assignment", reqID)
		return
	}
	api.Success(w, assignment, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload assignmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	assignment := payload.toAssignment(v)
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Create(r.Context(), user.OrgID, assignment)
	if err != nil {
		h.failMutation(w, err, reqID)
		return
	}

	response := map[string]any{"id": result.ID, "activeCount": result.ActiveCount}
	if h.MaxActiveWarnAfter > 0 && result.ActiveCount > h.MaxActiveWarnAfter {
		response["warning"] = "employee now has multiple active assignments"
	}

	h.audit(r, user, audit.ActionCreate, "assignment", result.ID, nil, assignment)
	h.notify(r, user.OrgID, assignment.UserID, notifications.TypeAssignmentCreated,
		"New assignment", "A new schedule assignment was created for you.")
	api.Created(w, response, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	assignmentID := chi.URLParam(r, "assignmentID")

	before, err := h.Service.Get(r.Context(), user.OrgID, assignmentID)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "assignment_get_failed", "failed to load assignment", reqID)
		return
	}

	var payload assignmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	assignment := payload.toAssignment(v)
	if v.Reject(w, reqID) {
		return
	}
	assignment.ID = assignmentID

	if err := h.Service.Update(r.Context(), user.OrgID, assignment); err != nil {
		h.failMutation(w, err, reqID)
		return
	}

	h.audit(r, user, audit.ActionUpdate, "assignment", assignmentID, before, assignment)
	h.notify(r, user.OrgID, assignment.UserID, notifications.TypeAssignmentUpdated,
		"Assignment updated", "One of your schedule assignments was changed.")
	api.Success(w, map[string]string{"status": "updated"}, reqID)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, audit.ActionComplete, "completed", h.Service.Complete)
}

func (h *Handler) handleTrash(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, audit.ActionTrash, "trashed", h.Service.Trash)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, audit.ActionRestore, "restored", h.Service.Restore)
}

func (h *Handler) handleHardDelete(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, audit.ActionDelete, "deleted", h.Service.HardDelete)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, action, status string, op func(ctx context.Context, orgID, assignmentID string) error) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	assignmentID := chi.URLParam(r, "assignmentID")

	if err := op(r.Context(), user.OrgID, assignmentID); err != nil {
		h.failMutation(w, err, reqID)
		return
	}

	h.audit(r, user, action, "assignment", assignmentID, nil, map[string]string{"status": status})
	if action == audit.ActionComplete {
		if assignment, err := h.Service.Get(r.Context(), user.OrgID, assignmentID); err == nil {
			h.notify(r, user.OrgID, assignment.UserID, notifications.TypeAssignmentArchived,
				"Assignment completed", "One of your schedule assignments was completed.")
		}
	}
	api.Success(w, map[string]string{"status": status}, reqID)
}

func (h *Handler) failMutation(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, schedule.ErrOverlapConflict):
		metrics.RecordOverlapRejection()
		api.Fail(w, http.StatusConflict, "overlap_conflict", "assignment overlaps an existing active assignment", reqID)
	case errors.Is(err, schedule.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, schedule.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", reqID)
	case errors.Is(err, schedule.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "assignment is not in a state that allows this operation", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "assignment_write_failed", "failed to store assignment", reqID)
	}
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), user.OrgID, user.UserID, action, entityType, entityID, reqID, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notify(r *http.Request, orgID, userID, ntype, title, body string) {
	if h.Notify == nil || userID == "" {
		return
	}
	if err := h.Notify.Create(r.Context(), orgID, userID, ntype, title, body); err != nil {
		slog.Warn("notification failed", "type", ntype, "err", err)
	}
}
