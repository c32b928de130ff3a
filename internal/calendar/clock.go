package calendar

import "time"

// Clock answers "has this trip day passed?" relative to a wall clock and the
// location in which trip days end.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a Clock reading the system time. A nil loc means UTC.
func NewClock(loc *time.Location) Clock {
	return NewClockAt(loc, time.Now)
}

// NewClockAt returns a Clock backed by now; used by tests to pin the time.
func NewClockAt(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: now}
}

// Now returns the current instant.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Location returns the location in which trip days end.
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Today returns the current calendar day in the clock's location.
func (c Clock) Today() DayKey {
	return DayKey(c.Now().In(c.Location()).Format(Layout))
}

// Active reports whether the day, taken as its end-of-day, has not passed yet.
// Values that cannot be normalized are never active.
func (c Clock) Active(date any) bool {
	day, ok := Normalize(date)
	if !ok {
		return false
	}
	return !c.Now().After(day.EndOfDay(c.Location()))
}
