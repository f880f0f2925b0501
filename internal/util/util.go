// Package util provides the number and time helpers shared by the dashboard formatter.
package util

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Grouping selects the thousands separator used by Group.
type Grouping int

const (
	GroupComma Grouping = iota
	GroupPeriod
	GroupSpace
)

// humanize format directives: thousands separator followed by a
// zero-precision decimal marker, so only the integer part is rendered.
var groupingFormats = map[Grouping]string{
	GroupComma:  "#,###.",
	GroupPeriod: "#.###,",
	GroupSpace:  "# ###,",
}

// String returns the separator character.
func (g Grouping) String() string {
	switch g {
	case GroupPeriod:
		return "."
	case GroupSpace:
		return " "
	default:
		return ","
	}
}

// Group renders n with a separator every three digits from the right.
// Zero renders as "0".
func Group(n int64, g Grouping) string {
	format, ok := groupingFormats[g]
	if !ok {
		format = groupingFormats[GroupComma]
	}
	return humanize.FormatInteger(format, int(n))
}

// Round rounds half-up toward positive infinity.
func Round(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int(math.Floor(x + 0.5))
}

// Floor truncates toward negative infinity. Non-finite input yields 0.
func Floor(x float64) int64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int64(math.Floor(x))
}

var iso8601 = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})Z$`)

const isoLayout = "2006-01-02T15:04:05Z"

// ParseISO8601 parses s when it is exactly a UTC timestamp of the form
// YYYY-MM-DDThh:mm:ssZ.
func ParseISO8601(s string) (time.Time, bool) {
	m := iso8601.FindString(s)
	if m == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoLayout, m)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// IsISO8601 reports whether s is a parseable UTC timestamp.
func IsISO8601(s string) bool {
	_, ok := ParseISO8601(s)
	return ok
}

// Clock renders a timestamp as zero-padded HH:MM in UTC.
// Anything that is not a timestamp is returned unchanged.
func Clock(s string) string {
	t, ok := ParseISO8601(s)
	if !ok {
		return s
	}
	return t.Format("15:04")
}

// Elapsed renders a duration encoded as a timestamp, where the day of month
// minus one counts whole days, as "{h} {hourWord} {m} {minuteWord}".
// The hour part is omitted when it is zero. Non-timestamps pass through.
func Elapsed(s, hourWord, minuteWord string) string {
	t, ok := ParseISO8601(s)
	if !ok {
		return s
	}

	days := t.Day() - 1
	hours := t.Hour() + days*24
	minutes := t.Minute()

	if hours > 0 {
		return strconv.Itoa(hours) + " " + hourWord + " " + strconv.Itoa(minutes) + " " + minuteWord
	}
	return strconv.Itoa(minutes) + " " + minuteWord
}
