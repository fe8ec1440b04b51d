package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dtrkit/dtr-backend/internal/dtr/processor"
	"github.com/dtrkit/dtr-backend/pkg/logger"
)

func testModel(t *testing.T) *processor.ReportModel {
	t.Helper()

	events := []processor.PunchEvent{
		{EmployeeKey: "5", Timestamp: time.Date(2025, 1, 2, 8, 3, 11, 0, time.UTC)},
		{EmployeeKey: "5", Timestamp: time.Date(2025, 1, 2, 17, 2, 45, 0, time.UTC)},
	}

	present := processor.Aggregate(events, nil)
	filled := processor.Fill(present, processor.EarliestTimestamp(events))
	undertimes := processor.ComputeAllUndertime(filled)
	return processor.Build(filled, undertimes)
}

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExcelRenderer_Render(t *testing.T) {
	r := NewExcelRenderer(logger.New("render-test", "development"))

	buf, err := r.Render(testModel(t))
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f := openWorkbook(t, buf)

	sheets := f.GetSheetList()
	require.Len(t, sheets, 2)
	assert.Equal(t, "DTR", sheets[0])

	title, err := f.GetCellValue("DTR", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Daily Time Record - 2025-01", title)

	// Header pair for January 1 and the first employee row beneath it.
	jan1, err := f.GetCellValue("DTR", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Jan 01", jan1)

	number, err := f.GetCellValue("DTR", "A4")
	require.NoError(t, err)
	assert.Equal(t, "5", number)

	// Jan 1 is an Absent Wednesday; Jan 2 carries the punch pair.
	absent, err := f.GetCellValue("DTR", "C4")
	require.NoError(t, err)
	assert.Equal(t, "Absent", absent)

	timeIn, err := f.GetCellValue("DTR", "E4")
	require.NoError(t, err)
	assert.Equal(t, "08:03:11", timeIn)

	timeOut, err := f.GetCellValue("DTR", "F4")
	require.NoError(t, err)
	assert.Equal(t, "17:02:45", timeOut)
}

func TestExcelRenderer_EmployeeSheet(t *testing.T) {
	r := NewExcelRenderer(logger.New("render-test", "development"))

	buf, err := r.Render(testModel(t))
	require.NoError(t, err)

	f := openWorkbook(t, buf)

	// Unknown directory keys fall back to the raw key as the sheet name.
	rows, err := f.GetRows("5")
	require.NoError(t, err)

	// Title + header + 31 day rows + total row.
	require.Len(t, rows, 34)

	assert.Equal(t, "Day", rows[1][0])
	assert.Equal(t, "Undertime", rows[1][6])

	jan2 := rows[3]
	assert.Equal(t, "2", jan2[0])
	assert.Equal(t, "Thursday", jan2[1])
	assert.Equal(t, "08:03:11", jan2[2])
	assert.Equal(t, "12:01", jan2[3])
	assert.Equal(t, "12:55", jan2[4])
	assert.Equal(t, "17:02:45", jan2[5])
	assert.Equal(t, "00:03", jan2[6])

	total := rows[33]
	assert.Equal(t, "Total Undertime", total[1])
	assert.Equal(t, "00:03", total[6])
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}

	name := sheetName(processor.EmployeeSheet{DisplayName: "JUAN DELA CRUZ"}, used)
	assert.Equal(t, "JUAN DELA CRUZ", name)

	// Duplicates get a numeric suffix.
	dup := sheetName(processor.EmployeeSheet{DisplayName: "JUAN DELA CRUZ"}, used)
	assert.Equal(t, "JUAN DELA CRUZ (2)", dup)

	// Forbidden characters are stripped and long names truncated.
	odd := sheetName(processor.EmployeeSheet{DisplayName: "A/B:C*D THE EXCEEDINGLY LONG EMPLOYEE NAME"}, used)
	assert.LessOrEqual(t, len(odd), 31)
	assert.NotContains(t, odd, "/")
	assert.NotContains(t, odd, ":")
}
