package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func exportFixture() []ExportRow {
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	return []ExportRow{
		{
			Date:          day,
			EmployeeName:  "Alice Smith",
			WorkplaceCode: "HQ",
			WorkplaceName: "Headquarters",
			Kind:          "OFFICE",
			StartAt:       day.Add(9 * time.Hour),
			EndAt:         day.Add(17 * time.Hour),
			Hours:         8,
		},
		{
			Date:          day,
			EmployeeName:  "Bob Jones",
			WorkplaceCode: "RMT",
			WorkplaceName: "Remote",
			Kind:          "REMOTE",
			StartAt:       day.Add(10 * time.Hour),
			EndAt:         day.Add(16 * time.Hour),
			Hours:         6,
		},
	}
}

func exportRange() RangeFilter {
	return RangeFilter{
		From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestExportCSV(t *testing.T) {
	store := newStubReportStore()
	store.exportRows = exportFixture()
	svc := NewService(store)

	export, err := svc.ExportSchedule(context.Background(), "org", exportRange(), FormatCSV, 0)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasSuffix(export.FileName, ".csv") {
		t.Fatalf("unexpected file name %q", export.FileName)
	}

	records, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "Date" || records[1][1] != "Alice Smith" {
		t.Fatalf("unexpected CSV content: %v", records)
	}
	if records[1][6] != "8.00" {
		t.Fatalf("hours must be formatted with two decimals, got %q", records[1][6])
	}
}

func TestExportXLSX(t *testing.T) {
	store := newStubReportStore()
	store.exportRows = exportFixture()
	svc := NewService(store)

	export, err := svc.ExportSchedule(context.Background(), "org", exportRange(), FormatXLSX, 0)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(export.Data))
	if err != nil {
		t.Fatalf("export is not a valid workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows("Schedule")
	if err != nil {
		t.Fatalf("reading sheet failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || rows[2][1] != "Bob Jones" {
		t.Fatalf("unexpected sheet content: %v", rows)
	}
}

func TestExportPDF(t *testing.T) {
	store := newStubReportStore()
	store.exportRows = exportFixture()
	svc := NewService(store)

	export, err := svc.ExportSchedule(context.Background(), "org", exportRange(), FormatPDF, 0)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !bytes.HasPrefix(export.Data, []byte("%PDF")) {
		t.Fatal("export must be a PDF document")
	}
}

func TestExportRowLimit(t *testing.T) {
	store := newStubReportStore()
	store.exportRows = exportFixture()
	svc := NewService(store)

	_, err := svc.ExportSchedule(context.Background(), "org", exportRange(), FormatCSV, 1)
	if !errors.Is(err, ErrRowLimit) {
		t.Fatalf("exceeding the row limit must fail, got %v", err)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	svc := NewService(newStubReportStore())

	_, err := svc.ExportSchedule(context.Background(), "org", exportRange(), "docx", 0)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown format must fail validation, got %v", err)
	}
}
