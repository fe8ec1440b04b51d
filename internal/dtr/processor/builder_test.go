package processor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPipeline(events []PunchEvent, names NameResolver) *ReportModel {
	present := Aggregate(events, names)
	filled := Fill(present, EarliestTimestamp(events))
	undertimes := ComputeAllUndertime(filled)
	return Build(filled, undertimes)
}

func TestBuild_EndToEndJanuary(t *testing.T) {
	events := []PunchEvent{
		punch("5", "2025-01-02 08:03:11"),
		punch("5", "2025-01-02 17:02:45"),
		punch("5", "2025-01-04 09:15:00"),
	}

	model := runPipeline(events, mapResolver{"5": "JUAN DELA CRUZ"})

	assert.Equal(t, "2025-01", model.ActiveMonth())
	require.Len(t, model.Dates, 31)
	require.Len(t, model.Grid, 1)
	require.Len(t, model.Sheets, 1)

	row := model.Grid[0]
	assert.Equal(t, 5, row.EmployeeNumber)
	assert.Equal(t, "JUAN DELA CRUZ", row.DisplayName)
	require.Len(t, row.Cells, 31)

	// Jan 1 (Wednesday, no punch) is Absent in both sub-columns.
	assert.Equal(t, "Absent", row.Cells[0].TimeIn)
	assert.Equal(t, "Absent", row.Cells[0].TimeOut)

	// Jan 2 has a full pair.
	assert.Equal(t, "08:03:11", row.Cells[1].TimeIn)
	assert.Equal(t, "17:02:45", row.Cells[1].TimeOut)

	// Jan 3 (Friday, no punch) is Absent.
	assert.Equal(t, "Absent", row.Cells[2].TimeIn)

	// Jan 4 is a Saturday, but the punch overrides the weekend label;
	// the single morning punch leaves the departure missing.
	assert.Equal(t, "09:15:00", row.Cells[3].TimeIn)
	assert.Equal(t, LabelNoOut, row.Cells[3].TimeOut)

	// Jan 5 (Sunday, no punch) keeps the weekend label.
	assert.Equal(t, "Sunday", row.Cells[4].TimeIn)

	sheet := model.Sheets[0]
	require.Len(t, sheet.Rows, 31)

	jan2 := sheet.Rows[1]
	assert.Equal(t, 2, jan2.DayOfMonth)
	assert.Equal(t, "Thursday", jan2.Weekday)
	assert.Equal(t, "08:03:11", jan2.Arrival)
	assert.Equal(t, "12:01", jan2.LunchOut)
	assert.Equal(t, "12:55", jan2.LunchIn)
	assert.Equal(t, "17:02:45", jan2.Departure)
	// 08:03 to 17:02 minus lunch leaves 485 worked minutes; the shortfall
	// is the three late/early minutes plus nothing else.
	assert.Equal(t, "00:03", jan2.Undertime)

	jan4 := sheet.Rows[3]
	assert.Equal(t, "09:15:00", jan4.Arrival)
	assert.Equal(t, LabelNoOut, jan4.Departure)
	assert.Empty(t, jan4.LunchOut)
	assert.Empty(t, jan4.Undertime)

	assert.Equal(t, 3, sheet.TotalMinutes)
	assert.Equal(t, "00:03", sheet.TotalUndertime)
}

func TestBuild_Idempotence(t *testing.T) {
	events := []PunchEvent{
		punch("12", "2025-03-03 07:58:00"),
		punch("12", "2025-03-03 17:05:00"),
		punch("4", "2025-03-04 08:30:00"),
		punch("4", "2025-03-04 16:45:00"),
	}
	names := mapResolver{"12": "B SANTOS", "4": "A REYES"}

	first := runPipeline(events, names)
	second := runPipeline(events, names)

	assert.Equal(t, fmt.Sprintf("%+v", first), fmt.Sprintf("%+v", second))
}

func TestBuild_SortsByEmployeeNumber(t *testing.T) {
	events := []PunchEvent{
		punch("12", "2025-03-03 08:00:00"),
		punch("4", "2025-03-03 08:00:00"),
		punch("102", "2025-03-03 08:00:00"),
	}

	model := runPipeline(events, nil)
	require.Len(t, model.Grid, 3)

	// Numeric order, not lexicographic ("102" < "12" < "4" as strings).
	assert.Equal(t, 4, model.Grid[0].EmployeeNumber)
	assert.Equal(t, 12, model.Grid[1].EmployeeNumber)
	assert.Equal(t, 102, model.Grid[2].EmployeeNumber)
}

func TestBuild_NonNumericKeysSortAfterByName(t *testing.T) {
	events := []PunchEvent{
		punch("ZZ-TEMP", "2025-03-03 08:00:00"),
		punch("7", "2025-03-03 08:00:00"),
		punch("AB-TEMP", "2025-03-03 08:00:00"),
	}

	model := runPipeline(events, nil)
	require.Len(t, model.Grid, 3)

	assert.True(t, model.Grid[0].HasNumber)
	assert.Equal(t, 7, model.Grid[0].EmployeeNumber)
	assert.Equal(t, "AB-TEMP", model.Grid[1].DisplayName)
	assert.Equal(t, "ZZ-TEMP", model.Grid[2].DisplayName)
}

func TestBuild_WeekendLabelsDuplicated(t *testing.T) {
	events := []PunchEvent{punch("5", "2025-01-06 08:00:00")}

	model := runPipeline(events, nil)
	row := model.Grid[0]

	// Jan 11 2025 is a Saturday.
	sat := row.Cells[10]
	assert.Equal(t, "Saturday", sat.TimeIn)
	assert.Equal(t, "Saturday", sat.TimeOut)
}

func TestBuild_Empty(t *testing.T) {
	model := Build(nil, nil)
	assert.Empty(t, model.Grid)
	assert.Empty(t, model.Sheets)
}

func TestBuild_MonthStartEnd(t *testing.T) {
	events := []PunchEvent{punch("5", "2024-02-10 08:00:00")}
	model := runPipeline(events, nil)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), model.MonthStart)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), model.MonthEnd)
	assert.Len(t, model.Dates, 29)
}
