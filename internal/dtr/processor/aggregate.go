package processor

import (
	"sort"
	"time"
)

// NameResolver resolves an employee key to a display name. The directory
// snapshot passed to a run satisfies this; it must stay immutable for the
// duration of the run.
type NameResolver interface {
	Resolve(key string) (string, bool)
}

type dayGroup struct {
	key  string
	date time.Time
}

// Aggregate groups punch events by (employee, civil date) and resolves each
// group into a Present day record. Within a group punches are sorted
// chronologically; with two or more punches the earliest is the arrival and
// the latest the departure, discarding anything in between. A single punch
// before noon is treated as the arrival with departure "No Out"; at or after
// noon it is the departure with arrival "No In". The noon split is a stated
// policy, not an inference of actual behavior.
func Aggregate(events []PunchEvent, names NameResolver) []DayRecord {
	groups := make(map[dayGroup][]PunchEvent)
	for _, e := range events {
		g := dayGroup{key: e.EmployeeKey, date: e.Date()}
		groups[g] = append(groups[g], e)
	}

	records := make([]DayRecord, 0, len(groups))
	for g, punches := range groups {
		sort.Slice(punches, func(i, j int) bool {
			return punches[i].Timestamp.Before(punches[j].Timestamp)
		})

		var status DayStatus
		if len(punches) == 1 {
			c := ClockOf(punches[0].Timestamp)
			if c.Hour < 12 {
				status = PresentStatus(RecordedTime(c), MissingTime(LabelNoOut))
			} else {
				status = PresentStatus(MissingTime(LabelNoIn), RecordedTime(c))
			}
		} else {
			first := ClockOf(punches[0].Timestamp)
			last := ClockOf(punches[len(punches)-1].Timestamp)
			status = PresentStatus(RecordedTime(first), RecordedTime(last))
		}

		records = append(records, DayRecord{
			EmployeeKey: g.key,
			DisplayName: resolveName(names, g.key),
			Date:        g.date,
			Status:      status,
		})
	}

	sortRecords(records)
	return records
}

func resolveName(names NameResolver, key string) string {
	if names != nil {
		if name, ok := names.Resolve(key); ok {
			return name
		}
	}
	return key
}

func sortRecords(records []DayRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].EmployeeKey != records[j].EmployeeKey {
			return records[i].EmployeeKey < records[j].EmployeeKey
		}
		return records[i].Date.Before(records[j].Date)
	})
}
