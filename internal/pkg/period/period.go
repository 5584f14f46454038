// Package period parses compliance period identifiers and computes the
// calendar window each identifier covers.
//
// Identifier shapes per frequency:
//
//	annual     2025
//	monthly    2025-03
//	quarterly  2025-Q2
//	weekly     2025-W14 (ISO-8601 week)
//	bi-annual  2025-H1
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyBiAnnual  Frequency = "bi-annual"
	FrequencyAnnual    Frequency = "annual"
)

var (
	ErrUnknownFrequency  = errors.New("unknown compliance frequency")
	ErrInvalidIdentifier = errors.New("invalid period identifier")
)

// Frequencies lists every supported frequency, shortest period first.
var Frequencies = []Frequency{
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyBiAnnual,
	FrequencyAnnual,
}

// ParseFrequency normalizes a frequency tag. Matching is case-insensitive and
// accepts the "biannual" and "bi_annual" spellings.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	case "quarterly":
		return FrequencyQuarterly, nil
	case "bi-annual", "biannual", "bi_annual":
		return FrequencyBiAnnual, nil
	case "annual", "yearly":
		return FrequencyAnnual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

func (f Frequency) String() string {
	return string(f)
}

// Identifier is a parsed period key. Index is the month, quarter, ISO week or
// half within Year; it is zero for annual periods.
type Identifier struct {
	Frequency Frequency
	Year      int
	Index     int
}

// Window is an inclusive range of calendar days. Start and End are both
// midnight of their day.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	day := truncateToDay(t.In(w.End.Location()))
	return !day.Before(w.Start) && !day.After(w.End)
}

// Parse validates id against the identifier shape of freq.
func Parse(id string, freq string) (Identifier, error) {
	f, err := ParseFrequency(freq)
	if err != nil {
		return Identifier{}, err
	}

	id = strings.ToUpper(strings.TrimSpace(id))
	invalid := fmt.Errorf("%w: %q for %s", ErrInvalidIdentifier, id, f)

	if f == FrequencyAnnual {
		year, ok := parseYear(id)
		if !ok {
			return Identifier{}, invalid
		}
		return Identifier{Frequency: f, Year: year}, nil
	}

	yearPart, rest, found := strings.Cut(id, "-")
	if !found {
		return Identifier{}, invalid
	}
	year, ok := parseYear(yearPart)
	if !ok {
		return Identifier{}, invalid
	}

	var prefix string
	var max int
	switch f {
	case FrequencyMonthly:
		prefix, max = "", 12
	case FrequencyQuarterly:
		prefix, max = "Q", 4
	case FrequencyBiAnnual:
		prefix, max = "H", 2
	case FrequencyWeekly:
		prefix, max = "W", isoWeeksInYear(year)
	}

	if !strings.HasPrefix(rest, prefix) {
		return Identifier{}, invalid
	}
	digits := strings.TrimPrefix(rest, prefix)
	if digits == "" || len(digits) > 2 || !isDigits(digits) {
		return Identifier{}, invalid
	}
	if f == FrequencyMonthly && len(digits) != 2 {
		return Identifier{}, invalid
	}
	index, _ := strconv.Atoi(digits)
	if index < 1 || index > max {
		return Identifier{}, invalid
	}

	return Identifier{Frequency: f, Year: year, Index: index}, nil
}

// String renders the canonical identifier.
func (id Identifier) String() string {
	switch id.Frequency {
	case FrequencyMonthly:
		return fmt.Sprintf("%04d-%02d", id.Year, id.Index)
	case FrequencyQuarterly:
		return fmt.Sprintf("%04d-Q%d", id.Year, id.Index)
	case FrequencyBiAnnual:
		return fmt.Sprintf("%04d-H%d", id.Year, id.Index)
	case FrequencyWeekly:
		return fmt.Sprintf("%04d-W%02d", id.Year, id.Index)
	}
	return fmt.Sprintf("%04d", id.Year)
}

// Window returns the calendar days the identifier covers, in loc.
func (id Identifier) Window(loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	switch id.Frequency {
	case FrequencyMonthly:
		start := time.Date(id.Year, time.Month(id.Index), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, -1)}
	case FrequencyQuarterly:
		start := time.Date(id.Year, time.Month((id.Index-1)*3+1), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 3, -1)}
	case FrequencyBiAnnual:
		start := time.Date(id.Year, time.Month((id.Index-1)*6+1), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 6, -1)}
	case FrequencyWeekly:
		start := isoWeekOneMonday(id.Year, loc).AddDate(0, 0, (id.Index-1)*7)
		return Window{Start: start, End: start.AddDate(0, 0, 6)}
	}
	start := time.Date(id.Year, time.January, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: time.Date(id.Year, time.December, 31, 0, 0, 0, 0, loc)}
}

// WindowFor parses id and returns its window in loc.
func WindowFor(id string, freq string, loc *time.Location) (Window, error) {
	parsed, err := Parse(id, freq)
	if err != nil {
		return Window{}, err
	}
	return parsed.Window(loc), nil
}

// IsOverdue reports whether now is strictly after the last day of the period.
// Unknown frequencies and malformed identifiers are never overdue.
func IsOverdue(id string, freq string, now time.Time) bool {
	w, err := WindowFor(id, freq, now.Location())
	if err != nil {
		return false
	}
	return truncateToDay(now).After(w.End)
}

// Current returns the identifier of the period of freq that contains t.
func Current(freq Frequency, t time.Time) string {
	switch freq {
	case FrequencyMonthly:
		return Identifier{Frequency: freq, Year: t.Year(), Index: int(t.Month())}.String()
	case FrequencyQuarterly:
		return Identifier{Frequency: freq, Year: t.Year(), Index: (int(t.Month())-1)/3 + 1}.String()
	case FrequencyBiAnnual:
		return Identifier{Frequency: freq, Year: t.Year(), Index: (int(t.Month())-1)/6 + 1}.String()
	case FrequencyWeekly:
		year, week := t.ISOWeek()
		return Identifier{Frequency: freq, Year: year, Index: week}.String()
	}
	return Identifier{Frequency: FrequencyAnnual, Year: t.Year()}.String()
}

// List returns every identifier of freq within year, in calendar order.
func List(freq Frequency, year int) []string {
	var count int
	switch freq {
	case FrequencyMonthly:
		count = 12
	case FrequencyQuarterly:
		count = 4
	case FrequencyBiAnnual:
		count = 2
	case FrequencyWeekly:
		count = isoWeeksInYear(year)
	case FrequencyAnnual:
		return []string{Identifier{Frequency: freq, Year: year}.String()}
	default:
		return nil
	}

	ids := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		ids = append(ids, Identifier{Frequency: freq, Year: year, Index: i}.String())
	}
	return ids
}

func parseYear(s string) (int, bool) {
	if len(s) != 4 || !isDigits(s) {
		return 0, false
	}
	year, _ := strconv.Atoi(s)
	return year, year > 0
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// isoWeekOneMonday returns the Monday of ISO week 1, the week holding Jan 4.
func isoWeekOneMonday(year int, loc *time.Location) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset)
}

func isoWeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
