package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"sewa-attendance/internal/models"
)

// ErrExportGenerateFail wraps any excelize failure while building a workbook
var ErrExportGenerateFail = errors.New("failed to generate workbook")

const exportSheet = "Attendance"

// ShareText renders one day's records as a plain-text log for chat sharing
func ShareText(date string, records []models.AttendanceRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sewa attendance %s\n", date)
	fmt.Fprintf(&b, "Total: %d | Active: %d\n", len(records), models.ActiveCount(records))
	if len(records) == 0 {
		b.WriteString("\nNo activity for this date.\n")
		return b.String()
	}

	b.WriteString("\n")
	for i, r := range records {
		out := models.FormatDisplayTimePtr(r.OutTime)
		if out == "" {
			out = "Present"
		}
		fmt.Fprintf(&b, "%d. %s - %s: %s - %s (%s)\n",
			i+1, r.SewadarName, r.CounterName,
			models.FormatDisplayTime(r.InTime), out,
			models.ComputeDuration(r.InTime, r.OutTime))
		if r.Notes != "" {
			fmt.Fprintf(&b, "   %s\n", r.Notes)
		}
	}
	return b.String()
}

// Workbook renders one day's records as an .xlsx file.
// It returns the file contents and a suggested file name.
func Workbook(date string, records []models.AttendanceRecord) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := layoutSheet(f, date); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}

	for i, r := range records {
		out := models.FormatDisplayTimePtr(r.OutTime)
		if out == "" {
			out = "Present"
		}
		values := []string{
			r.SewadarName,
			r.CounterName,
			models.FormatDisplayTime(r.InTime),
			out,
			models.ComputeDuration(r.InTime, r.OutTime),
			r.Notes,
		}
		if err := writeRow(f, i+3, values); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}
	return buf, fmt.Sprintf("sewa_attendance_%s.xlsx", date), nil
}

// layoutSheet creates the Attendance sheet with its title and header rows
func layoutSheet(f *excelize.File, date string) error {
	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "B", 24},
		{"C", "E", 12},
		{"F", "F", 40},
	}
	for _, w := range widths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#B45309"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(exportSheet, "A1", fmt.Sprintf("Sewa attendance %s", date)); err != nil {
		return err
	}
	if err := f.MergeCell(exportSheet, "A1", "F1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "A1", headerStyle); err != nil {
		return err
	}
	if err := writeRow(f, 2, []string{"Sewadar", "Counter", "In", "Out", "Duration", "Notes"}); err != nil {
		return err
	}
	return f.SetCellStyle(exportSheet, "A2", "F2", headerStyle)
}

// writeRow fills one-based row from column A onwards
func writeRow(f *excelize.File, row int, values []string) error {
	for col, v := range values {
		name, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, name, v); err != nil {
			return err
		}
	}
	return nil
}
