// Package processor implements the attendance aggregation engine: it turns an
// unordered stream of punch-clock events into a complete per-employee,
// per-day report model for the active month.
package processor

import (
	"fmt"
	"time"
)

// Sentinel labels used when a day has only one recorded punch.
const (
	LabelNoIn  = "No In"
	LabelNoOut = "No Out"
)

// Standard schedule applied to every present day.
const (
	ScheduleArrivalHour   = 8
	ScheduleDepartureHour = 17
	RequiredMinutes       = 480
)

// Fixed lunch window assumed for every complete day (no lunch-punch detection).
var (
	LunchOutClock = Clock{Hour: 12, Minute: 1}
	LunchInClock  = Clock{Hour: 12, Minute: 55}
)

// Clock is a civil wall-clock time within a day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ClockOf extracts the wall-clock component of a timestamp.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Minutes returns the clock position as minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// String renders the clock as zero-padded HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// PunchEvent is a single clock event tied to an employee. Immutable.
type PunchEvent struct {
	EmployeeKey string
	Timestamp   time.Time
}

// Date truncates the event timestamp to its civil date.
func (e PunchEvent) Date() time.Time {
	y, m, d := e.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.Timestamp.Location())
}

// TimeValue is either a recorded wall-clock time or a missing-punch sentinel.
type TimeValue struct {
	recorded bool
	clock    Clock
	label    string
}

// RecordedTime wraps a recorded punch clock.
func RecordedTime(c Clock) TimeValue {
	return TimeValue{recorded: true, clock: c}
}

// MissingTime wraps a missing-punch sentinel label.
func MissingTime(label string) TimeValue {
	return TimeValue{label: label}
}

// IsRecorded reports whether the value holds an actual punch time.
func (v TimeValue) IsRecorded() bool {
	return v.recorded
}

// Clock returns the recorded clock. Only meaningful when IsRecorded is true.
func (v TimeValue) Clock() Clock {
	return v.clock
}

// String renders HH:MM:SS for recorded values and the sentinel label otherwise.
func (v TimeValue) String() string {
	if v.recorded {
		return v.clock.String()
	}
	return v.label
}

// DayKind discriminates the DayStatus variants.
type DayKind int

const (
	DayPresent DayKind = iota
	DayWeekend
	DayAbsent
)

// DayStatus is a tagged variant: Present carries the in/out pair, Weekend
// carries the weekday name, Absent carries nothing.
type DayStatus struct {
	Kind        DayKind
	TimeIn      TimeValue
	TimeOut     TimeValue
	WeekendName string
}

// PresentStatus builds a Present status from an in/out pair.
func PresentStatus(in, out TimeValue) DayStatus {
	return DayStatus{Kind: DayPresent, TimeIn: in, TimeOut: out}
}

// WeekendStatus builds a Weekend status ("Saturday" or "Sunday").
func WeekendStatus(name string) DayStatus {
	return DayStatus{Kind: DayWeekend, WeekendName: name}
}

// AbsentStatus builds an Absent status.
func AbsentStatus() DayStatus {
	return DayStatus{Kind: DayAbsent}
}

// Label returns the display text for non-present statuses.
func (s DayStatus) Label() string {
	switch s.Kind {
	case DayWeekend:
		return s.WeekendName
	case DayAbsent:
		return "Absent"
	default:
		return ""
	}
}

// DayRecord is one (employee, date) cell of the monthly table. Exactly one
// exists per pair across the full active-month range once the filler has run.
type DayRecord struct {
	EmployeeKey string
	DisplayName string
	Date        time.Time
	Status      DayStatus
}

// UndertimeResult is the per-day shortfall for a Present record with both
// punches recorded. Applicable is false for weekends, absences, and
// incomplete pairs.
type UndertimeResult struct {
	EmployeeKey      string
	Date             time.Time
	Applicable       bool
	ShortfallMinutes int
}

// FormatMinutes renders a minute count as zero-padded HH:MM. Zero renders as
// an empty string so clean days leave the undertime column blank.
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GridCell is one date's Time In / Time Out sub-column pair for one employee.
type GridCell struct {
	TimeIn  string
	TimeOut string
}

// GridRow is one employee row of the organization grid.
type GridRow struct {
	EmployeeNumber int
	HasNumber      bool
	EmployeeKey    string
	DisplayName    string
	Cells          []GridCell
}

// SheetRow is one date row of an employee sheet.
type SheetRow struct {
	DayOfMonth int
	Weekday    string
	Arrival    string
	LunchOut   string
	LunchIn    string
	Departure  string
	Undertime  string
}

// EmployeeSheet is the per-employee monthly day list plus the undertime total.
type EmployeeSheet struct {
	EmployeeKey    string
	DisplayName    string
	Rows           []SheetRow
	TotalMinutes   int
	TotalUndertime string
}

// ReportModel is the renderer-ready output of a conversion run: the
// organization-wide grid and one sheet per employee, both covering every
// date of the active month.
type ReportModel struct {
	MonthStart time.Time
	MonthEnd   time.Time
	Dates      []time.Time
	Grid       []GridRow
	Sheets     []EmployeeSheet
}

// ActiveMonth renders the model's month as YYYY-MM.
func (m *ReportModel) ActiveMonth() string {
	return m.MonthStart.Format("2006-01")
}
