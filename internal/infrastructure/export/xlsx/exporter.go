// Package xlsx renders safety network logs as a spreadsheet.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/medguard/internal/core/domain"
)

const sheetName = "Reports"

var header = []string{
	"Report ID", "Incident Date", "Patient", "Behavior", "Severity", "Description",
	"Doctor", "Clinic", "State", "City", "AI Summary", "Logged At",
}

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) WriteReports(w io.Writer, reports []domain.Report) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, 1, toAny(header)); err != nil {
		return err
	}
	for i, r := range reports {
		row := []any{
			r.ID, r.IncidentDate, r.PatientInitials, r.BehaviorType, string(r.Severity), r.Description,
			r.DoctorName, r.ClinicID, r.State, r.City, r.AISummary, r.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(sheetName, "F", "F", 60); err != nil {
		return fmt.Errorf("set description width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "K", "K", 60); err != nil {
		return fmt.Errorf("set summary width: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
