// Package calendar reduces the date shapes a trip can carry to a canonical
// calendar day so that two trips can be compared for a same-day collision.
package calendar

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Layout is the canonical day-key layout.
const Layout = "2006-01-02"

// DayKey is a date reduced to year-month-day, formatted as Layout.
// The zero value means "no comparable day".
type DayKey string

// Timestamp is the serialized timestamp shape stored by document databases:
// whole seconds since the Unix epoch plus an optional nanosecond part.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds,omitempty"`
}

// Time returns the instant the timestamp denotes, in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, ts.Nanoseconds).UTC()
}

// textParser accepts the free-text shapes users actually type into the date
// field. Anything else ("2-29 Mayıs") is not a comparable day.
var textParser = &now.Config{
	WeekStartDay: time.Monday,
	TimeLocation: time.UTC,
	TimeFormats: []string{
		Layout,
		"2006-1-2",
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"02.01.2006",
		"2.1.2006",
		"2006/01/02",
		"2006/1/2",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"2 Jan 2006",
	},
}

// Normalize reduces v to a calendar day key.
//
// Accepted inputs are Timestamp (UTC day), time.Time (the day in the value's own
// location), a free-text string, a Value, a DayKey, and pointers to these.
// The second result is false when v cannot be reduced to a day; callers must
// leave such values out of comparisons.
func Normalize(v any) (DayKey, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case DayKey:
		return parseText(string(x))
	case Timestamp:
		return fromTime(x.Time())
	case *Timestamp:
		if x == nil {
			return "", false
		}
		return fromTime(x.Time())
	case time.Time:
		return fromTime(x)
	case *time.Time:
		if x == nil {
			return "", false
		}
		return fromTime(*x)
	case string:
		return parseText(x)
	case Value:
		return Normalize(x.v)
	case *Value:
		if x == nil {
			return "", false
		}
		return Normalize(x.v)
	default:
		return "", false
	}
}

// Same reports whether two values fall on the same calendar day.
// Values that cannot be normalized never match anything.
func Same(a, b any) bool {
	ka, ok := Normalize(a)
	if !ok {
		return false
	}
	kb, ok := Normalize(b)
	return ok && ka == kb
}

func fromTime(t time.Time) (DayKey, bool) {
	if t.IsZero() {
		return "", false
	}
	return DayKey(t.Format(Layout)), true
}

func parseText(s string) (DayKey, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	t, err := textParser.Parse(s)
	if err != nil {
		return "", false
	}
	// now fills fields it could not read with the current time. A day whose
	// year was not written out ("0000-01-01") is not comparable.
	if !strings.Contains(s, t.Format("2006")) {
		return "", false
	}
	return fromTime(t)
}

// String returns the key as YYYY-MM-DD.
func (k DayKey) String() string {
	return string(k)
}

// Time returns midnight UTC of the day. It returns the zero time for an invalid key.
func (k DayKey) Time() time.Time {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

// EndOfDay returns the last instant of the day in loc.
func (k DayKey) EndOfDay(loc *time.Location) time.Time {
	t := k.Time()
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}
