package retry

import (
	"fmt"
	"strings"
	"time"
)

// Table is an ordered list of retry delays indexed by consecutive-failure
// count. Lookups past the end are clamped to the last (maximum) entry.
type Table []time.Duration

// Delay returns the delay for the given zero-based attempt.
// An empty table yields zero; negative attempts use the first entry.
func (t Table) Delay(attempt int) time.Duration {
	if len(t) == 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(t) {
		attempt = len(t) - 1
	}
	return t[attempt]
}

// Validate checks that the table is non-empty and every entry is positive.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("backoff table is empty")
	}
	for i, d := range t {
		if d <= 0 {
			return fmt.Errorf("backoff table entry %d must be positive, got %s", i, d)
		}
	}
	return nil
}

// String renders the table as a comma-separated list of durations.
func (t Table) String() string {
	parts := make([]string, len(t))
	for i, d := range t {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

// ParseTable parses a comma-separated list of Go durations ("1s,2s,5s").
func ParseTable(s string) (Table, error) {
	var table Table
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("invalid backoff delay %q: %w", part, err)
		}
		table = append(table, d)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
