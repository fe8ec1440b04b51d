package processor

import (
	"fmt"
	"sort"
	"strconv"
)

// Build assembles the renderer-ready report model from the filled day records
// and their undertime results. It performs no I/O and is deterministic:
// grid rows are sorted by numeric employee number ascending with a
// name-order fallback for keys that do not parse as integers, and dates run
// chronologically. The join between records and results over
// (employee, date) is total because the filler guarantees full coverage.
func Build(records []DayRecord, undertimes []UndertimeResult) *ReportModel {
	if len(records) == 0 {
		return &ReportModel{}
	}

	earliest := records[0].Date
	for _, rec := range records[1:] {
		if rec.Date.Before(earliest) {
			earliest = rec.Date
		}
	}
	monthStart, monthEnd := MonthBounds(earliest)
	dates := MonthDates(monthStart, monthEnd)

	recordsByPair := make(map[dayGroup]DayRecord, len(records))
	for _, rec := range records {
		recordsByPair[dayGroup{key: rec.EmployeeKey, date: rec.Date}] = rec
	}
	undertimeByPair := make(map[dayGroup]UndertimeResult, len(undertimes))
	for _, u := range undertimes {
		undertimeByPair[dayGroup{key: u.EmployeeKey, date: u.Date}] = u
	}

	employees := collectEmployees(records)

	model := &ReportModel{
		MonthStart: monthStart,
		MonthEnd:   monthEnd,
		Dates:      dates,
	}

	for _, emp := range employees {
		row := GridRow{
			EmployeeNumber: emp.number,
			HasNumber:      emp.hasNumber,
			EmployeeKey:    emp.key,
			DisplayName:    emp.name,
			Cells:          make([]GridCell, 0, len(dates)),
		}
		sheet := EmployeeSheet{
			EmployeeKey: emp.key,
			DisplayName: emp.name,
			Rows:        make([]SheetRow, 0, len(dates)),
		}

		for _, d := range dates {
			rec := recordsByPair[dayGroup{key: emp.key, date: d}]
			row.Cells = append(row.Cells, gridCell(rec))

			u := undertimeByPair[dayGroup{key: emp.key, date: d}]
			sheet.Rows = append(sheet.Rows, sheetRow(rec, u))
			if u.Applicable {
				sheet.TotalMinutes += u.ShortfallMinutes
			}
		}

		sheet.TotalUndertime = FormatMinutes(sheet.TotalMinutes)
		model.Grid = append(model.Grid, row)
		model.Sheets = append(model.Sheets, sheet)
	}

	return model
}

type employeeOrder struct {
	key       string
	name      string
	number    int
	hasNumber bool
}

// collectEmployees lists distinct employees sorted by numeric employee
// number; keys that are not integers sort after the numbered ones, by
// display name.
func collectEmployees(records []DayRecord) []employeeOrder {
	seen := make(map[string]bool)
	var employees []employeeOrder
	for _, rec := range records {
		if seen[rec.EmployeeKey] {
			continue
		}
		seen[rec.EmployeeKey] = true

		emp := employeeOrder{key: rec.EmployeeKey, name: rec.DisplayName}
		if n, err := strconv.Atoi(rec.EmployeeKey); err == nil {
			emp.number = n
			emp.hasNumber = true
		}
		employees = append(employees, emp)
	}

	sort.Slice(employees, func(i, j int) bool {
		a, b := employees[i], employees[j]
		if a.hasNumber != b.hasNumber {
			return a.hasNumber
		}
		if a.hasNumber {
			return a.number < b.number
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.key < b.key
	})

	return employees
}

// gridCell pivots one day record into the Time In / Time Out sub-columns.
// Weekend and Absent labels are duplicated into both.
func gridCell(rec DayRecord) GridCell {
	if rec.Status.Kind == DayPresent {
		return GridCell{
			TimeIn:  rec.Status.TimeIn.String(),
			TimeOut: rec.Status.TimeOut.String(),
		}
	}
	label := rec.Status.Label()
	return GridCell{TimeIn: label, TimeOut: label}
}

func sheetRow(rec DayRecord, u UndertimeResult) SheetRow {
	row := SheetRow{
		DayOfMonth: rec.Date.Day(),
		Weekday:    rec.Date.Weekday().String(),
	}

	if rec.Status.Kind != DayPresent {
		row.Arrival = rec.Status.Label()
		row.Departure = rec.Status.Label()
		return row
	}

	row.Arrival = rec.Status.TimeIn.String()
	row.Departure = rec.Status.TimeOut.String()
	if u.Applicable {
		// The fixed lunch window only applies to days with a complete
		// in/out pair.
		row.LunchOut = clockHHMM(LunchOutClock)
		row.LunchIn = clockHHMM(LunchInClock)
		row.Undertime = FormatMinutes(u.ShortfallMinutes)
	}
	return row
}

func clockHHMM(c Clock) string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
