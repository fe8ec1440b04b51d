package processor

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/dtrkit/dtr-backend/pkg/errors"
)

// Timestamp layouts accepted by the ingester, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04",
}

// IngestResult carries the parsed events plus the count of rows dropped for
// unparsable timestamps.
type IngestResult struct {
	Events  []PunchEvent
	Dropped int
}

// Ingest parses a tab-delimited punch log. Field 1 is the employee key,
// field 2 the timestamp; further fields are ignored. Rows whose timestamp
// cannot be parsed are dropped individually. A source with zero rows or a
// retained row with fewer than two fields fails the whole source; a source
// where every row was dropped fails with an empty-dataset error.
func Ingest(source string, r io.Reader) (*IngestResult, error) {
	scanner := bufio.NewScanner(r)

	result := &IngestResult{}
	rows := 0

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows++

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, errors.InputFormat(source, "row has fewer than two fields")
		}

		key := strings.TrimSpace(fields[0])
		ts, ok := parseTimestamp(strings.TrimSpace(fields[1]))
		if !ok {
			result.Dropped++
			continue
		}

		result.Events = append(result.Events, PunchEvent{
			EmployeeKey: key,
			Timestamp:   ts,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.InputFormat(source, err.Error())
	}

	if rows == 0 {
		return nil, errors.InputFormat(source, "source has no rows")
	}
	if len(result.Events) == 0 {
		return nil, errors.EmptyDataset(source)
	}

	return result, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
