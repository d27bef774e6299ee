package planner

import (
	"context"
	"testing"
	"time"
)

type stubPlannerStore struct {
	records    []Record
	lastFrom   time.Time
	lastTo     time.Time
	lastStatus string
}

func (s *stubPlannerStore) Records(ctx context.Context, orgID string, from, to time.Time, status, userID string) ([]Record, error) {
	s.lastFrom, s.lastTo, s.lastStatus = from, to, status
	var out []Record
	for _, rec := range s.records {
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *stubPlannerStore) Extent(ctx context.Context, orgID, status, userID string) (time.Time, time.Time, bool, error) {
	if len(s.records) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	minStart, maxEnd := extent(s.records)
	return minStart, maxEnd, true, nil
}

func TestMatrixDefaultRangeCoversRecords(t *testing.T) {
	store := &stubPlannerStore{records: []Record{
		rec("s1", "u1", "w1", day(5, 9), day(5, 17)),
		rec("s2", "u1", "w1", day(20, 9), day(20, 17)),
	}}
	svc := NewService(store)

	matrix, err := svc.Matrix(context.Background(), "org", Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matrix.From.After(day(5, 9)) || matrix.To.Before(day(20, 17)) {
		t.Fatalf("default window must span the records: [%v, %v]", matrix.From, matrix.To)
	}
	if store.lastStatus != "ACTIVE" {
		t.Fatalf("archived must be excluded by default, queried status %q", store.lastStatus)
	}
}

func TestMatrixEmptyFallsBackToCurrentWeek(t *testing.T) {
	svc := NewService(&stubPlannerStore{})
	fixed := time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC) // a Wednesday
	svc.Now = func() time.Time { return fixed }

	matrix, err := svc.Matrix(context.Background(), "org", Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantFrom := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if !matrix.From.Equal(wantFrom) {
		t.Fatalf("expected week start %v, got %v", wantFrom, matrix.From)
	}
	if !matrix.To.Equal(wantFrom.AddDate(0, 0, 7)) {
		t.Fatalf("expected week end %v, got %v", wantFrom.AddDate(0, 0, 7), matrix.To)
	}
	if len(matrix.Rows) != 0 {
		t.Fatalf("no rows expected: %+v", matrix.Rows)
	}
}

func TestPersonalFiltersToUserAndGroupsByWorkplace(t *testing.T) {
	store := &stubPlannerStore{records: []Record{
		rec("s1", "u1", "w1", day(5, 9), day(5, 17)),
		rec("s2", "u2", "w1", day(5, 9), day(5, 17)),
	}}
	svc := NewService(store)

	matrix, err := svc.Personal(context.Background(), "org", "u1", Params{From: day(1, 0), To: day(31, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matrix.Rows) != 1 {
		t.Fatalf("expected a single workplace row, got %+v", matrix.Rows)
	}
	if matrix.Rows[0].Key != "w1" {
		t.Fatalf("personal planner must group by workplace: %+v", matrix.Rows[0])
	}
}
