package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// Format is a history export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: export format %q", models.ErrInvalidEnum, s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the attachment name for an export taken at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("verification-history-%s.%s", t.UTC().Format("20060102-150405"), f)
}

var header = []string{"ID", "Service", "Status", "Veteran", "Created At", "Completed At"}

func row(item models.VerificationHistoryItem) []string {
	completed := ""
	if item.CompletedAt != nil {
		completed = item.CompletedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		item.ID,
		string(item.ServiceType),
		string(item.Status),
		item.VeteranName,
		item.CreatedAt.UTC().Format(time.RFC3339),
		completed,
	}
}

// Write encodes items in the given format to w.
func Write(w io.Writer, format Format, items []models.VerificationHistoryItem) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, items)
	default:
		return writeCSV(w, items)
	}
}

func writeCSV(w io.Writer, items []models.VerificationHistoryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, item := range items {
		if err := cw.Write(row(item)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", item.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "History"

func writeXLSX(w io.Writer, items []models.VerificationHistoryItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = excelize.Cell{StyleID: style, Value: h}
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, item := range items {
		values := row(item)
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write row %s: %w", item.ID, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
