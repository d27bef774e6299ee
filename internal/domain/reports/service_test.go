package reports

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubReportStore struct {
	reports    map[string]WorkReport
	lastFilter RangeFilter
	exportRows []ExportRow
}

func newStubReportStore() *stubReportStore {
	return &stubReportStore{reports: map[string]WorkReport{}}
}

func reportKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (s *stubReportStore) Upsert(ctx context.Context, orgID string, report WorkReport) (string, error) {
	key := reportKey(report.UserID, report.WorkDate)
	report.ID = key
	s.reports[key] = report
	return key, nil
}

func (s *stubReportStore) ListByRange(ctx context.Context, orgID string, filter RangeFilter) ([]WorkReport, error) {
	s.lastFilter = filter
	out := []WorkReport{}
	for _, report := range s.reports {
		if report.WorkDate.Before(filter.From) || !report.WorkDate.Before(filter.To) {
			continue
		}
		out = append(out, report)
	}
	return out, nil
}

func (s *stubReportStore) Delete(ctx context.Context, orgID, userID, reportID string) error {
	if _, ok := s.reports[reportID]; !ok {
		return ErrNotFound
	}
	delete(s.reports, reportID)
	return nil
}

func (s *stubReportStore) Statistics(ctx context.Context, orgID string, filter RangeFilter) ([]Statistic, error) {
	s.lastFilter = filter
	return []Statistic{}, nil
}

func (s *stubReportStore) ExportRows(ctx context.Context, orgID string, filter RangeFilter) ([]ExportRow, error) {
	s.lastFilter = filter
	return s.exportRows, nil
}

func TestSubmitUpserts(t *testing.T) {
	store := newStubReportStore()
	svc := NewService(store)

	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Submit(context.Background(), "org", WorkReport{UserID: "u1", WorkDate: day, Hours: 8}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "org", WorkReport{UserID: "u1", WorkDate: day, Hours: 6.5}); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if len(store.reports) != 1 {
		t.Fatalf("resubmission must overwrite, got %d rows", len(store.reports))
	}
	if got := store.reports[reportKey("u1", day)].Hours; got != 6.5 {
		t.Fatalf("expected 6.5 hours after overwrite, got %v", got)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(newStubReportStore())
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	cases := []WorkReport{
		{WorkDate: day, Hours: 8},
		{UserID: "u1", Hours: 8},
		{UserID: "u1", WorkDate: day, Hours: -1},
		{UserID: "u1", WorkDate: day, Hours: 25},
	}
	for _, report := range cases {
		if _, err := svc.Submit(context.Background(), "org", report); !errors.Is(err, ErrValidation) {
			t.Fatalf("report %+v must fail validation, got %v", report, err)
		}
	}
}

func TestListDefaultsToCurrentMonth(t *testing.T) {
	store := newStubReportStore()
	svc := NewService(store)

	if _, err := svc.List(context.Background(), "org", RangeFilter{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if store.lastFilter.From.IsZero() || store.lastFilter.To.IsZero() {
		t.Fatal("empty range must default to the current month")
	}
	if store.lastFilter.From.Day() != 1 {
		t.Fatalf("default range must start on the 1st, got %v", store.lastFilter.From)
	}
	if !store.lastFilter.To.Equal(store.lastFilter.From.AddDate(0, 1, 0)) {
		t.Fatalf("default range must span one month, got %v to %v", store.lastFilter.From, store.lastFilter.To)
	}
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc := NewService(newStubReportStore())

	filter := RangeFilter{
		From: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := svc.List(context.Background(), "org", filter); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted range must fail validation, got %v", err)
	}
}
