package schedulehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"rota/internal/domain/auth"
	"rota/internal/domain/schedule"
	"rota/internal/transport/http/middleware"
)

const testSecret = "handler-test-secret"

type stubStore struct {
	assignments map[string]*schedule.Assignment
	createErr   error
	created     int
}

func newStubStore() *stubStore {
	return &stubStore{assignments: map[string]*schedule.Assignment{}}
}

func (s *stubStore) Get(ctx context.Context, orgID, assignmentID string) (*schedule.Assignment, error) {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *stubStore) List(ctx context.Context, orgID string, filter schedule.ListFilter) (schedule.ListResult, error) {
	var out schedule.ListResult
	for _, a := range s.assignments {
		out.Assignments = append(out.Assignments, *a)
	}
	out.Total = len(out.Assignments)
	return out, nil
}

func (s *stubStore) Create(ctx context.Context, orgID string, a schedule.Assignment) (string, int, error) {
	if s.createErr != nil {
		return "", 0, s.createErr
	}
	s.created++
	a.ID = "assignment-1"
	s.assignments[a.ID] = &a
	return a.ID, s.created, nil
}

func (s *stubStore) Update(ctx context.Context, orgID string, a schedule.Assignment) error {
	if _, ok := s.assignments[a.ID]; !ok {
		return schedule.ErrNotFound
	}
	s.assignments[a.ID] = &a
	return nil
}

func (s *stubStore) Complete(ctx context.Context, orgID, assignmentID string) error {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return schedule.ErrInvalidState
	}
	a.Status = schedule.StatusArchived
	return nil
}

func (s *stubStore) Trash(ctx context.Context, orgID, assignmentID string) error {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return schedule.ErrNotFound
	}
	now := time.Now()
	a.TrashedAt = &now
	return nil
}

func (s *stubStore) Restore(ctx context.Context, orgID, assignmentID string) error {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return schedule.ErrNotFound
	}
	a.TrashedAt = nil
	return nil
}

func (s *stubStore) HardDelete(ctx context.Context, orgID, assignmentID string) error {
	if _, ok := s.assignments[assignmentID]; !ok {
		return schedule.ErrNotFound
	}
	delete(s.assignments, assignmentID)
	return nil
}

func testRouter(t *testing.T, store *stubStore) http.Handler {
	t.Helper()
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	NewHandler(schedule.NewService(store), nil, nil, 1).RegisterRoutes(router)
	return router
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID: "user-1", OrgID: "org-1", Role: role,
	}, time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func TestCreateAssignment(t *testing.T) {
	store := newStubStore()
	router := testRouter(t, store)

	body := `{
    "userId": "user-2",
    "workplaceId": "wp-1",
    "startAt": "2025-03-01",
    "shifts": [{"workDate": "2025-03-03", "startAt": "2025-03-03T09:00:00Z", "endAt": "2025-03-03T17:00:00Z"}]
  }`
	req := httptest.NewRequest(http.MethodPost, "/assignments/", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, auth.RoleManager))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success || envelope.Data.ID == "" {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}
	if store.created != 1 {
		t.Fatalf("expected one store create, got %d", store.created)
	}
}

func TestCreateAssignmentOverlapMapsToConflict(t *testing.T) {
	store := newStubStore()
	store.createErr = schedule.ErrOverlapConflict
	router := testRouter(t, store)

	body := `{"userId": "user-2", "workplaceId": "wp-1", "startAt": "2025-03-01"}`
	req := httptest.NewRequest(http.MethodPost, "/assignments/", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, auth.RoleManager))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "overlap_conflict") {
		t.Fatalf("expected overlap_conflict code, got %s", rec.Body.String())
	}
}

func TestCreateAssignmentValidation(t *testing.T) {
	router := testRouter(t, newStubStore())

	body := `{"userId": "", "workplaceId": "wp-1", "startAt": "not-a-date"}`
	req := httptest.NewRequest(http.MethodPost, "/assignments/", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, auth.RoleManager))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "validation_error") {
		t.Fatalf("expected validation_error code, got %s", rec.Body.String())
	}
}

func TestCreateAssignmentForbiddenForEmployeeRole(t *testing.T) {
	router := testRouter(t, newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/assignments/", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, auth.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransitionLifecycle(t *testing.T) {
	store := newStubStore()
	store.assignments["assignment-1"] = &schedule.Assignment{
		ID: "assignment-1", UserID: "user-2", Status: schedule.StatusActive,
	}
	router := testRouter(t, store)

	for _, step := range []struct {
		path   string
		expect string
	}{
		{"/assignments/assignment-1/trash", "trashed"},
		{"/assignments/assignment-1/restore", "restored"},
		{"/assignments/assignment-1/complete", "completed"},
	} {
		req := httptest.NewRequest(http.MethodPost, step.path, nil)
		req.Header.Set("Authorization", bearer(t, auth.RoleManager))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", step.path, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), step.expect) {
			t.Fatalf("%s: expected status %q in %s", step.path, step.expect, rec.Body.String())
		}
	}

	if store.assignments["assignment-1"].Status != schedule.StatusArchived {
		t.Fatalf("expected archived status after complete")
	}
}

func TestGetAssignmentNotFound(t *testing.T) {
	router := testRouter(t, newStubStore())

	req := httptest.NewRequest(http.MethodGet, "/assignments/missing", nil)
	req.Header.Set("Authorization", bearer(t, auth.RoleManager))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
