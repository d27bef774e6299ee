package requestshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/audit"
	"rota/internal/domain/auth"
	"rota/internal/domain/notifications"
	"rota/internal/domain/requests"
	"rota/internal/domain/schedule"
	"rota/internal/platform/metrics"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service *requests.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *requests.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapRequestsSubmit)).Get("/adjustments", h.handleListAdjustments)
		r.With(middleware.RequireCapability(auth.CapRequestsSubmit)).Post("/adjustments", h.handleSubmitAdjustment)
		r.With(middleware.RequireCapability(auth.CapRequestsSubmit)).Get("/adjustments/{requestID}", h.handleGetAdjustment)
		r.With(middleware.RequireCapability(auth.CapRequestsDecide)).Post("/adjustments/{requestID}/approve", h.decideAdjustment(true))
		r.With(middleware.RequireCapability(auth.CapRequestsDecide)).Post("/adjustments/{requestID}/reject", h.decideAdjustment(false))

		r.With(middleware.RequireCapability(auth.CapRequestsSubmit)).Get("/assignments", h.handleListAssignmentRequests)
		r.With(middleware.RequireCapability(auth.CapRequestsSubmit)).Post("/assignments", h.handleSubmitAssignmentRequest)
		r.With(middleware.RequireCapability(auth.CapRequestsSubmit)).Get("/assignments/{requestID}", h.handleGetAssignmentRequest)
		r.With(middleware.RequireCapability(auth.CapRequestsDecide)).Post("/assignments/{requestID}/approve", h.decideAssignmentRequest(true))
		r.With(middleware.RequireCapability(auth.CapRequestsDecide)).Post("/assignments/{requestID}/reject", h.decideAssignmentRequest(false))
	})
}

type adjustmentPayload struct {
	AssignmentID string                 `json:"assignmentId"`
	ProposedDays []requests.DayProposal `json:"proposedDays"`
	Comment      string                 `json:"comment"`
}

type assignmentRequestPayload struct {
	WorkplaceID  string                 `json:"workplaceId"`
	StartAt      string                 `json:"startAt"`
	EndAt        string                 `json:"endAt"`
	ProposedDays []requests.DayProposal `json:"proposedDays"`
	Comment      string                 `json:"comment"`
}

type decisionPayload struct {
	Comment string `json:"comment"`
}

func (h *Handler) listFilter(r *http.Request, user auth.UserContext) requests.ListFilter {
	page := shared.ParsePagination(r, 50, 200)
	filter := requests.ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	// Deciders may browse everyone's requests, everyone else sees their own.
	if user.Can(auth.CapRequestsDecide) {
		filter.RequesterID = r.URL.Query().Get("requesterId")
	} else {
		filter.RequesterID = user.UserID
	}
	return filter
}

func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	result, err := h.Service.ListAdjustments(r.Context(), user.OrgID, h.listFilter(r, user))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "request_list_failed", "failed to list requests", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleSubmitAdjustment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload adjustmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id, err := h.Service.SubmitAdjustment(r.Context(), user.OrgID, requests.AdjustmentRequest{
		AssignmentID: payload.AssignmentID,
		RequesterID:  user.UserID,
		ProposedDays: payload.ProposedDays,
		Comment:      payload.Comment,
	})
	if err != nil {
		h.failRequest(w, err, reqID)
		return
	}

	h.audit(r, user, audit.ActionCreate, "adjustment_request", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleGetAdjustment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	request, err := h.Service.GetAdjustment(r.Context(), user.OrgID, chi.URLParam(r, "requestID"))
	if err != nil {
		h.failRequest(w, err, reqID)
		return
	}
	if request.RequesterID != user.UserID && !user.Can(auth.CapRequestsDecide) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not your request", reqID)
		return
	}
	api.Success(w, request, reqID)
}

func (h *Handler) decideAdjustment(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		user, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")

		var payload decisionPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)

		err := h.Service.DecideAdjustment(r.Context(), user.OrgID, requestID, requests.Decision{
			DeciderID: user.UserID,
			Approve:   approve,
			Comment:   payload.Comment,
		})
		if err != nil {
			if errors.Is(err, requests.ErrAlreadyProcessed) {
				metrics.RecordDecision("adjustment", "already_processed")
			}
			h.failRequest(w, err, reqID)
			return
		}

		outcome := requests.StatusRejected
		action := audit.ActionReject
		ntype := notifications.TypeRequestRejected
		title := "Adjustment request rejected"
		if approve {
			outcome = requests.StatusApproved
			action = audit.ActionApprove
			ntype = notifications.TypeRequestApproved
			title = "Adjustment request approved"
		}
		metrics.RecordDecision("adjustment", strings.ToLower(outcome))
		h.audit(r, user, action, "adjustment_request", requestID, nil, map[string]string{"status": outcome})

		if request, err := h.Service.GetAdjustment(r.Context(), user.OrgID, requestID); err == nil {
			h.notify(r, user.OrgID, request.RequesterID, ntype, title, payload.Comment)
		}
		api.Success(w, map[string]string{"status": outcome}, reqID)
	}
}

func (h *Handler) handleListAssignmentRequests(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	result, err := h.Service.ListAssignmentRequests(r.Context(), user.OrgID, h.listFilter(r, user))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "request_list_failed", "failed to list requests", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleSubmitAssignmentRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload assignmentRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	request := requests.AssignmentRequest{
		WorkplaceID:  payload.WorkplaceID,
		RequesterID:  user.UserID,
		ProposedDays: payload.ProposedDays,
		Comment:      payload.Comment,
	}
	if start, ok := v.Date("startAt", payload.StartAt); ok {
		request.StartAt = start
	}
	if payload.EndAt != "" {
		if end, ok := v.Date("endAt", payload.EndAt); ok {
			request.EndAt = &end
			v.DateOrder("startAt", request.StartAt, "endAt", end)
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Service.SubmitAssignmentRequest(r.Context(), user.OrgID, request)
	if err != nil {
		h.failRequest(w, err, reqID)
		return
	}

	h.audit(r, user, audit.ActionCreate, "assignment_request", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleGetAssignmentRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	request, err := h.Service.GetAssignmentRequest(r.Context(), user.OrgID, chi.URLParam(r, "requestID"))
	if err != nil {
		h.failRequest(w, err, reqID)
		return
	}
	if request.RequesterID != user.UserID && !user.Can(auth.CapRequestsDecide) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not your request", reqID)
		return
	}
	api.Success(w, request, reqID)
}

func (h *Handler) decideAssignmentRequest(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		user, _ := middleware.GetUser(r.Context())
		requestID := chi.URLParam(r, "requestID")

		var payload decisionPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)

		assignmentID, err := h.Service.DecideAssignmentRequest(r.Context(), user.OrgID, requestID, requests.Decision{
			DeciderID: user.UserID,
			Approve:   approve,
			Comment:   payload.Comment,
		})
		if err != nil {
			if errors.Is(err, requests.ErrAlreadyProcessed) {
				metrics.RecordDecision("assignment", "already_processed")
			}
			h.failRequest(w, err, reqID)
			return
		}

		outcome := requests.StatusRejected
		action := audit.ActionReject
		ntype := notifications.TypeRequestRejected
		title := "Assignment request rejected"
		if approve {
			outcome = requests.StatusApproved
			action = audit.ActionApprove
			ntype = notifications.TypeRequestApproved
			title = "Assignment request approved"
		}
		metrics.RecordDecision("assignment", strings.ToLower(outcome))
		h.audit(r, user, action, "assignment_request", requestID, nil, map[string]string{"status": outcome, "assignmentId": assignmentID})

		if request, err := h.Service.GetAssignmentRequest(r.Context(), user.OrgID, requestID); err == nil {
			h.notify(r, user.OrgID, request.RequesterID, ntype, title, payload.Comment)
		}

		response := map[string]string{"status": outcome}
		if assignmentID != "" {
			response["assignmentId"] = assignmentID
		}
			api.Success(w, response, reqID)
	}
}

func (h *Handler) failRequest(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, requests.ErrAlreadyProcessed):
		api.Fail(w, http.StatusConflict, "already_processed", "request has already been decided", reqID)
	case errors.Is(err, requests.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", reqID)
	case errors.Is(err, requests.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, schedule.ErrOverlapConflict):
		metrics.RecordOverlapRejection()
		api.Fail(w, http.StatusConflict, "overlap_conflict", "approval would create an overlapping assignment", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "request_failed", "failed to process request", reqID)
	}
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.OrgID, user.UserID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notify(r *http.Request, orgID, userID, ntype, title, body string) {
	if h.Notify == nil || userID == "" {
		return
	}
	if body == "" {
		body = title
	}
	if err := h.Notify.Create(r.Context(), orgID, userID, ntype, title, body); err != nil {
		slog.Warn("notification failed", "type", ntype, "err", err)
	}
}
