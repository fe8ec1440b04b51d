// Package render serializes a report model into an .xlsx artifact. The core
// engine hands over a fully built model; everything about cell styling,
// merges, and sheet layout is this package's concern alone.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dtrkit/dtr-backend/internal/dtr/processor"
	"github.com/dtrkit/dtr-backend/pkg/errors"
	"github.com/dtrkit/dtr-backend/pkg/logger"
)

// Renderer turns a report model into artifact bytes.
type Renderer interface {
	Render(model *processor.ReportModel) (*bytes.Buffer, error)
}

// ExcelRenderer renders the organization grid and the per-employee sheets
// into one workbook.
type ExcelRenderer struct {
	logger *logger.Logger
}

// NewExcelRenderer creates an excelize-backed renderer.
func NewExcelRenderer(log *logger.Logger) *ExcelRenderer {
	return &ExcelRenderer{logger: log.WithComponent("render")}
}

const orgSheetName = "DTR"

// Render writes the workbook: the "DTR" sheet holds the organization grid
// with a merged two-column header per date, followed by one sheet per
// employee with the day rows and the trailing undertime total.
func (r *ExcelRenderer) Render(model *processor.ReportModel) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(orgSheetName)
	if err != nil {
		return nil, errors.RenderFailed(err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	if err := r.writeOrgSheet(f, model); err != nil {
		return nil, err
	}

	usedNames := map[string]bool{orgSheetName: true}
	for _, sheet := range model.Sheets {
		if err := r.writeEmployeeSheet(f, model, sheet, usedNames); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		r.logger.Error().Err(err).Msg("failed to serialize workbook")
		return nil, errors.RenderFailed(err)
	}

	return buf, nil
}

func (r *ExcelRenderer) writeOrgSheet(f *excelize.File, model *processor.ReportModel) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.RenderFailed(err)
	}

	f.SetColWidth(orgSheetName, "A", "A", 8)
	f.SetColWidth(orgSheetName, "B", "B", 28)

	// Title row spanning the whole grid.
	lastCol := colName(2 + 2*len(model.Dates))
	f.SetCellValue(orgSheetName, "A1", fmt.Sprintf("Daily Time Record - %s", model.ActiveMonth()))
	f.MergeCell(orgSheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(orgSheetName, "A1", "A1", headerStyle)

	// Date header: one merged pair of sub-columns per date.
	f.SetCellValue(orgSheetName, "A2", "No.")
	f.MergeCell(orgSheetName, "A2", "A3")
	f.SetCellValue(orgSheetName, "B2", "Name")
	f.MergeCell(orgSheetName, "B2", "B3")

	for i, d := range model.Dates {
		left := colName(3 + 2*i)
		right := colName(4 + 2*i)

		f.SetColWidth(orgSheetName, left, right, 10)
		f.SetCellValue(orgSheetName, cell(left, 2), d.Format("Jan 02"))
		f.MergeCell(orgSheetName, cell(left, 2), cell(right, 2))
		f.SetCellValue(orgSheetName, cell(left, 3), "Time In")
		f.SetCellValue(orgSheetName, cell(right, 3), "Time Out")
	}
	f.SetCellStyle(orgSheetName, "A2", cell(lastCol, 3), headerStyle)

	row := 4
	for _, gridRow := range model.Grid {
		if gridRow.HasNumber {
			f.SetCellValue(orgSheetName, cell("A", row), gridRow.EmployeeNumber)
		} else {
			f.SetCellValue(orgSheetName, cell("A", row), gridRow.EmployeeKey)
		}
		f.SetCellValue(orgSheetName, cell("B", row), gridRow.DisplayName)

		for i, c := range gridRow.Cells {
			f.SetCellValue(orgSheetName, cell(colName(3+2*i), row), c.TimeIn)
			f.SetCellValue(orgSheetName, cell(colName(4+2*i), row), c.TimeOut)
		}
		row++
	}

	return nil
}

func (r *ExcelRenderer) writeEmployeeSheet(f *excelize.File, model *processor.ReportModel, sheet processor.EmployeeSheet, usedNames map[string]bool) error {
	name := sheetName(sheet, usedNames)

	if _, err := f.NewSheet(name); err != nil {
		return errors.RenderFailed(err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return errors.RenderFailed(err)
	}

	f.SetColWidth(name, "A", "A", 6)
	f.SetColWidth(name, "B", "B", 12)
	f.SetColWidth(name, "C", "G", 11)

	f.SetCellValue(name, "A1", fmt.Sprintf("%s - %s", sheet.DisplayName, model.ActiveMonth()))
	f.MergeCell(name, "A1", "G1")
	f.SetCellStyle(name, "A1", "A1", headerStyle)

	headers := []string{"Day", "Weekday", "Time In", "Lunch Out", "Lunch In", "Time Out", "Undertime"}
	for i, h := range headers {
		f.SetCellValue(name, cell(colName(i+1), 2), h)
	}
	f.SetCellStyle(name, "A2", "G2", headerStyle)

	row := 3
	for _, day := range sheet.Rows {
		f.SetCellValue(name, cell("A", row), day.DayOfMonth)
		f.SetCellValue(name, cell("B", row), day.Weekday)
		f.SetCellValue(name, cell("C", row), day.Arrival)
		f.SetCellValue(name, cell("D", row), day.LunchOut)
		f.SetCellValue(name, cell("E", row), day.LunchIn)
		f.SetCellValue(name, cell("F", row), day.Departure)
		f.SetCellValue(name, cell("G", row), day.Undertime)
		row++
	}

	f.SetCellValue(name, cell("B", row), "Total Undertime")
	f.SetCellValue(name, cell("G", row), sheet.TotalUndertime)
	f.SetCellStyle(name, cell("B", row), cell("G", row), headerStyle)

	return nil
}

// sheetName derives a workbook-safe sheet name from the employee. Excel caps
// sheet names at 31 characters and forbids a handful of separators, and
// names must be unique within the workbook.
func sheetName(sheet processor.EmployeeSheet, used map[string]bool) string {
	name := sheet.DisplayName
	if name == "" {
		name = sheet.EmployeeKey
	}

	replacer := strings.NewReplacer("/", " ", "\\", " ", "?", " ", "*", " ", "[", " ", "]", " ", ":", " ")
	name = strings.TrimSpace(replacer.Replace(name))
	if len(name) > 31 {
		name = name[:31]
	}

	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		if len(base)+len(suffix) > 31 {
			name = base[:31-len(suffix)] + suffix
		} else {
			name = base + suffix
		}
	}
	used[name] = true
	return name
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
