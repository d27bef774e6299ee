package schedule

import (
	"errors"
	"testing"
	"time"
)

func ts(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func tsp(value string) *time.Time {
	parsed := ts(value)
	return &parsed
}

func active(id, userID string, start time.Time, end *time.Time) Assignment {
	return Assignment{ID: id, UserID: userID, Status: StatusActive, StartAt: start, EndAt: end}
}

func TestCheckConflict_Overlap(t *testing.T) {
	existing := []Assignment{
		active("a1", "u1", ts("2025-03-01T00:00:00Z"), tsp("2025-03-10T00:00:00Z")),
	}
	candidate := active("", "u1", ts("2025-03-05T00:00:00Z"), tsp("2025-03-15T00:00:00Z"))

	if err := CheckConflict(candidate, existing); !errors.Is(err, ErrOverlapConflict) {
		t.Fatalf("expected overlap conflict, got %v", err)
	}
}

func TestCheckConflict_BackToBack(t *testing.T) {
	existing := []Assignment{
		active("a1", "u1", ts("2025-03-01T08:00:00Z"), tsp("2025-03-10T18:00:00Z")),
	}
	candidate := active("", "u1", ts("2025-03-10T18:00:00Z"), tsp("2025-03-20T18:00:00Z"))

	if err := CheckConflict(candidate, existing); err != nil {
		t.Fatalf("back-to-back assignments must not conflict, got %v", err)
	}
}

func TestCheckConflict_ArchivedIgnored(t *testing.T) {
	archived := Assignment{
		ID: "a1", UserID: "u1", Status: StatusArchived,
		StartAt: ts("2025-01-01T00:00:00Z"), EndAt: tsp("2025-01-31T00:00:00Z"),
	}
	candidate := active("", "u1", ts("2025-01-15T00:00:00Z"), tsp("2025-02-15T00:00:00Z"))

	if err := CheckConflict(candidate, []Assignment{archived}); err != nil {
		t.Fatalf("archived assignments must never conflict, got %v", err)
	}
}

func TestCheckConflict_TrashedIgnored(t *testing.T) {
	trashed := active("a1", "u1", ts("2025-01-01T00:00:00Z"), tsp("2025-01-31T00:00:00Z"))
	trashed.TrashedAt = tsp("2025-01-20T00:00:00Z")
	candidate := active("", "u1", ts("2025-01-15T00:00:00Z"), tsp("2025-02-15T00:00:00Z"))

	if err := CheckConflict(candidate, []Assignment{trashed}); err != nil {
		t.Fatalf("trashed assignments must never conflict, got %v", err)
	}
}

func TestCheckConflict_DifferentEmployees(t *testing.T) {
	existing := []Assignment{
		active("a1", "u1", ts("2025-03-01T00:00:00Z"), tsp("2025-03-31T00:00:00Z")),
	}
	candidate := active("", "u2", ts("2025-03-01T00:00:00Z"), tsp("2025-03-31T00:00:00Z"))

	if err := CheckConflict(candidate, existing); err != nil {
		t.Fatalf("other employees must not conflict, got %v", err)
	}
}

func TestCheckConflict_OpenEnded(t *testing.T) {
	existing := []Assignment{
		active("a1", "u1", ts("2025-03-01T00:00:00Z"), nil),
	}
	candidate := active("", "u1", ts("2026-01-01T00:00:00Z"), tsp("2026-02-01T00:00:00Z"))

	if err := CheckConflict(candidate, existing); !errors.Is(err, ErrOverlapConflict) {
		t.Fatalf("open-ended assignment must conflict with any later start, got %v", err)
	}

	before := active("", "u1", ts("2025-01-01T00:00:00Z"), tsp("2025-03-01T00:00:00Z"))
	if err := CheckConflict(before, existing); err != nil {
		t.Fatalf("interval ending at the open-ended start must not conflict, got %v", err)
	}
}

func TestCheckConflict_NonActiveCandidateSkipped(t *testing.T) {
	existing := []Assignment{
		active("a1", "u1", ts("2025-03-01T00:00:00Z"), tsp("2025-03-31T00:00:00Z")),
	}
	candidate := Assignment{
		UserID: "u1", Status: StatusArchived,
		StartAt: ts("2025-03-01T00:00:00Z"), EndAt: tsp("2025-03-31T00:00:00Z"),
	}

	if err := CheckConflict(candidate, existing); err != nil {
		t.Fatalf("non-active candidate must skip the check, got %v", err)
	}
}

func TestCheckConflict_EditedAssignmentExcluded(t *testing.T) {
	existing := []Assignment{
		active("a1", "u1", ts("2025-03-01T00:00:00Z"), tsp("2025-03-31T00:00:00Z")),
	}
	// Editing a1 itself: its stored interval must not conflict with the edit.
	edited := active("a1", "u1", ts("2025-03-05T00:00:00Z"), tsp("2025-03-25T00:00:00Z"))

	if err := CheckConflict(edited, existing); err != nil {
		t.Fatalf("assignment must not conflict with itself, got %v", err)
	}
}

func TestCountActive(t *testing.T) {
	assignments := []Assignment{
		active("a1", "u1", ts("2025-01-01T00:00:00Z"), tsp("2025-02-01T00:00:00Z")),
		active("a2", "u1", ts("2025-02-01T00:00:00Z"), nil),
		{ID: "a3", UserID: "u1", Status: StatusArchived, StartAt: ts("2024-01-01T00:00:00Z")},
		active("a4", "u2", ts("2025-01-01T00:00:00Z"), nil),
	}
	if got := CountActive("u1", assignments); got != 2 {
		t.Fatalf("expected 2 active assignments, got %d", got)
	}
}
