package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// floatPrefix matches the leading decimal literal of a string, the way a
// lenient float parser reads "12.5kg" as 12.5.
var floatPrefix = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// ToNumber coerces a cell to a finite float. Strings lose their thousands
// separators and are read up to the first non-numeric character. Booleans,
// times and nulls never coerce.
func ToNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindString:
		return parseLeadingFloat(strings.ReplaceAll(v.str, ",", ""))
	default:
		return 0, false
	}
}

func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// maxEpochMillis bounds numeric instants to ±100,000,000 days around the
// Unix epoch. Larger magnitudes are not dates.
const maxEpochMillis = 8.64e15

// ToTime coerces a cell to an instant. Numbers are epoch milliseconds and
// strings go through the date layouts below.
func ToTime(v Value) (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindNumber:
		if math.IsNaN(v.num) || math.Abs(v.num) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v.num)).UTC(), true
	case KindString:
		return parseDate(v.str)
	default:
		return time.Time{}, false
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"01-02-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.ANSIC,
	"Mon Jan 2 2006",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// parseDate reports whether s names a valid instant. Layouts without a zone
// are read as UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
