package plannerhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/auth"
	"rota/internal/domain/planner"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service *planner.Service
}

func NewHandler(service *planner.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireCapability(auth.CapPlannerRead)).Get("/planner", h.handleMatrix)
	r.With(middleware.RequireAuth).Get("/planner/me", h.handlePersonal)
}

func (h *Handler) parseParams(w http.ResponseWriter, r *http.Request, reqID string) (planner.Params, bool) {
	query := r.URL.Query()
	page := shared.ParsePagination(r, 50, 200)
	params := planner.Params{
		Mode:   query.Get("mode"),
		Status: query.Get("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	v := shared.NewValidator()
	if raw := query.Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			params.From = from
		}
	}
	if raw := query.Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			params.To = to
		}
	}
	v.DateOrder("from", params.From, "to", params.To)
	v.Enum("mode", params.Mode, []string{planner.ModeByEmployee, planner.ModeByWorkplace}, "unknown planner mode")
	if v.Reject(w, reqID) {
		return planner.Params{}, false
	}
	return params, true
}

func (h *Handler) handleMatrix(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	params, ok := h.parseParams(w, r, reqID)
	if !ok {
		return
	}

	matrix, err := h.Service.Matrix(r.Context(), user.OrgID, params)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "planner_failed", "failed to assemble planner", reqID)
		return
	}
	api.Success(w, matrix, reqID)
}

func (h *Handler) handlePersonal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	params, ok := h.parseParams(w, r, reqID)
	if !ok {
		return
	}

	matrix, err := h.Service.Personal(r.Context(), user.OrgID, user.UserID, params)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "planner_failed", "failed to assemble planner", reqID)
		return
	}
	api.Success(w, matrix, reqID)
}
