package reportshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/auth"
	"rota/internal/domain/reports"
	"rota/internal/transport/http/api"
	"rota/internal/transport/http/middleware"
	"rota/internal/transport/http/shared"
)

type Handler struct {
	Service        *reports.Service
	ExportRowLimit int
}

func NewHandler(service *reports.Service, exportRowLimit int) *Handler {
	return &Handler{Service: service, ExportRowLimit: exportRowLimit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireCapability(auth.CapReportsRead)).Get("/work-reports", h.handleList)
	r.With(middleware.RequireCapability(auth.CapReportsRead)).Post("/work-reports", h.handleSubmit)
	r.With(middleware.RequireCapability(auth.CapReportsRead)).Delete("/work-reports/{reportID}", h.handleDelete)

	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapReportsManage)).Get("/statistics", h.handleStatistics)
		r.With(middleware.RequireCapability(auth.CapReportsManage)).Get("/export", h.handleExport)
	})
}

type workReportPayload struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
	Note  string  `json:"note"`
}

func (h *Handler) rangeFilter(r *http.Request, v *shared.Validator) reports.RangeFilter {
	filter := reports.RangeFilter{UserID: r.URL.Query().Get("userId")}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			filter.From = from
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			filter.To = to
		}
	}
	return filter
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	filter := h.rangeFilter(r, v)
	if v.Reject(w, reqID) {
		return
	}

	// Only report managers may browse someone else's reports.
	if !user.Can(auth.CapReportsManage) {
		filter.UserID = user.UserID
	}

	result, err := h.Service.List(r.Context(), user.OrgID, filter)
	if err != nil {
		h.failReport(w, err, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload workReportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Service.Submit(r.Context(), user.OrgID, reports.WorkReport{
		UserID:   user.UserID,
		WorkDate: date,
		Hours:    payload.Hours,
		Note:     payload.Note,
	})
	if err != nil {
		h.failReport(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	reportID := chi.URLParam(r, "reportID")

	// Managers may delete anyone's report; everyone else only their own.
	scopeUserID := user.UserID
	if user.Can(auth.CapReportsManage) {
		scopeUserID = ""
	}

	if err := h.Service.Delete(r.Context(), user.OrgID, scopeUserID, reportID); err != nil {
		h.failReport(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"id": reportID}, reqID)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	filter := h.rangeFilter(r, v)
	if v.Reject(w, reqID) {
		return
	}

	stats, err := h.Service.Statistics(r.Context(), user.OrgID, filter)
	if err != nil {
		h.failReport(w, err, reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	format := r.URL.Query().Get("format")
	if format == "" {
		format = reports.FormatCSV
	}

	v := shared.NewValidator()
	filter := h.rangeFilter(r, v)
	v.Enum("format", format, []string{reports.FormatCSV, reports.FormatXLSX, reports.FormatPDF}, "must be one of csv, xlsx, pdf")
	if v.Reject(w, reqID) {
		return
	}

	export, err := h.Service.ExportSchedule(r.Context(), user.OrgID, filter, format, h.ExportRowLimit)
	if err != nil {
		if errors.Is(err, reports.ErrRowLimit) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "export_too_large",
				fmt.Sprintf("export exceeds the %d row limit, narrow the date range", h.ExportRowLimit), reqID)
			return
		}
		h.failReport(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func (h *Handler) failReport(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, reports.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "work report not found", reqID)
	case errors.Is(err, reports.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to process work report", reqID)
	}
}
