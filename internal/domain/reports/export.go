package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"rota/internal/ids"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var ErrRowLimit = fmt.Errorf("export row limit exceeded")

// Export holds a rendered schedule export ready to be sent to the client.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

var exportHeader = []string{"Date", "Employee", "Workplace", "Kind", "Start", "End", "Hours"}

// ExportSchedule renders all shifts of a range in the requested format.
// MaxRows guards against unbounded result sets; zero disables the guard.
func (s *Service) ExportSchedule(ctx context.Context, orgID string, filter RangeFilter, format string, maxRows int) (*Export, error) {
	if err := validateRange(&filter); err != nil {
		return nil, err
	}
	rows, err := s.Store.ExportRows(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	if maxRows > 0 && len(rows) > maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrRowLimit, len(rows), maxRows)
	}

	name := fmt.Sprintf("schedule-%s-%s-%s",
		filter.From.Format("20060102"), filter.To.Format("20060102"), ids.New())

	switch format {
	case FormatCSV, "":
		data, err := renderCSV(rows)
		if err != nil {
			return nil, err
		}
		return &Export{FileName: name + ".csv", ContentType: "text/csv", Data: data}, nil
	case FormatXLSX:
		data, err := renderXLSX(rows)
		if err != nil {
			return nil, err
		}
		return &Export{
			FileName:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := renderPDF(rows, filter)
		if err != nil {
			return nil, err
		}
		return &Export{FileName: name + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", ErrValidation, format)
	}
}

func exportCells(row ExportRow) []string {
	return []string{
		row.Date.Format("2006-01-02"),
		row.EmployeeName,
		row.WorkplaceCode + " " + row.WorkplaceName,
		row.Kind,
		row.StartAt.Format("15:04"),
		row.EndAt.Format("15:04"),
		strconv.FormatFloat(row.Hours, 'f', 2, 64),
	}
}

func renderCSV(rows []ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(exportCells(row)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows []ExportRow) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Schedule"
	file.SetSheetName("Sheet1", sheet)
	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}
	widths := make([]float64, len(exportHeader))
	for i, title := range exportHeader {
		widths[i] = float64(len(title))
	}
	for i, row := range rows {
		for col, value := range exportCells(row) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
			if w := float64(len(value)); w > widths[col] {
				widths[col] = w
			}
		}
	}
	for col := range exportHeader {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetColWidth(sheet, name, name, widths[col]+2); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(rows []ExportRow, filter RangeFilter) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Schedule %s to %s",
		filter.From.Format("2006-01-02"), filter.To.AddDate(0, 0, -1).Format("2006-01-02")))
	pdf.Ln(12)

	colWidths := []float64{26, 60, 60, 30, 24, 24, 20}
	pdf.SetFont("Helvetica", "B", 10)
	for i, title := range exportHeader {
		pdf.CellFormat(colWidths[i], 8, title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for i, value := range exportCells(row) {
			pdf.CellFormat(colWidths[i], 7, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
