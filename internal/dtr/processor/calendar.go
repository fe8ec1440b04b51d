package processor

import (
	"time"
)

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}

// EarliestTimestamp returns the smallest timestamp across the event set.
func EarliestTimestamp(events []PunchEvent) time.Time {
	var min time.Time
	for i, e := range events {
		if i == 0 || e.Timestamp.Before(min) {
			min = e.Timestamp
		}
	}
	return min
}

// Fill completes the Present records to cover every employee and every date
// of the active month, the month containing the earliest punch in the
// dataset. Punch-free Saturdays and Sundays become Weekend records, other
// punch-free days become Absent. Days after an employee's own last punch are
// filled the same way as days before it; no blank distinction is made.
//
// The output holds exactly one record per (employee, date) pair over the
// full month, sorted by employee key then date.
func Fill(present []DayRecord, earliest time.Time) []DayRecord {
	if len(present) == 0 {
		return nil
	}

	monthStart, monthEnd := MonthBounds(earliest)

	type empInfo struct {
		key  string
		name string
	}

	byPair := make(map[dayGroup]DayRecord, len(present))
	seen := make(map[string]bool)
	var employees []empInfo
	for _, rec := range present {
		byPair[dayGroup{key: rec.EmployeeKey, date: rec.Date}] = rec
		if !seen[rec.EmployeeKey] {
			seen[rec.EmployeeKey] = true
			employees = append(employees, empInfo{key: rec.EmployeeKey, name: rec.DisplayName})
		}
	}

	var filled []DayRecord
	for _, emp := range employees {
		for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
			if rec, ok := byPair[dayGroup{key: emp.key, date: d}]; ok {
				filled = append(filled, rec)
				continue
			}

			var status DayStatus
			switch d.Weekday() {
			case time.Saturday:
				status = WeekendStatus("Saturday")
			case time.Sunday:
				status = WeekendStatus("Sunday")
			default:
				status = AbsentStatus()
			}

			filled = append(filled, DayRecord{
				EmployeeKey: emp.key,
				DisplayName: emp.name,
				Date:        d,
				Status:      status,
			})
		}
	}

	sortRecords(filled)
	return filled
}

// MonthDates lists every date from start through end inclusive.
func MonthDates(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
