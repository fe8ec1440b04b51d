// Package directory loads and serves the employee code to display-name
// mapping consumed by the aggregation engine. A snapshot is loaded once per
// conversion run and never mutated while the run is in flight.
package directory

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Snapshot is an immutable view of the employee directory.
type Snapshot struct {
	names map[string]string
}

// NewSnapshot builds a snapshot from an explicit mapping. The input map is
// copied; later changes to it do not leak into the snapshot.
func NewSnapshot(names map[string]string) *Snapshot {
	copied := make(map[string]string, len(names))
	for k, v := range names {
		copied[k] = v
	}
	return &Snapshot{names: copied}
}

// Resolve returns the display name for an employee key.
func (s *Snapshot) Resolve(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	name, ok := s.names[key]
	return name, ok
}

// Len returns the number of directory entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// LoadResult carries a loaded snapshot plus the count of malformed lines
// that were skipped.
type LoadResult struct {
	Snapshot *Snapshot
	Skipped  int
}

// LoadFile reads an employee list with one "<integer code><space><name>"
// entry per line. Names are upper-cased. Malformed lines (missing name or a
// non-integer code) are skipped and counted rather than failing the load.
func LoadFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open employee list: %w", err)
	}
	defer f.Close()

	names := make(map[string]string)
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		code, name, ok := parseEntry(line)
		if !ok {
			skipped++
			continue
		}
		names[code] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employee list: %w", err)
	}

	return &LoadResult{
		Snapshot: &Snapshot{names: names},
		Skipped:  skipped,
	}, nil
}

func parseEntry(line string) (code, name string, ok bool) {
	code, name, found := strings.Cut(line, " ")
	if !found {
		return "", "", false
	}
	if _, err := strconv.Atoi(code); err != nil {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return code, strings.ToUpper(name), true
}
