package clock

import "time"

// Clock supplies the current calendar date. Billing logic compares dates,
// never instants, so Today is always midnight UTC.
type Clock interface {
	Today() time.Time
}

// System reads the wall clock in the given location (UTC when nil) and
// returns that local calendar date at midnight UTC.
type System struct {
	Location *time.Location
}

func (s System) Today() time.Time {
	now := time.Now()
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return DateOf(now)
}

// Fixed always returns the same date. Used by tests and by the admin CLI
// when replaying jobs for a past day.
type Fixed struct {
	Date time.Time
}

func (f Fixed) Today() time.Time {
	return DateOf(f.Date)
}

// DateOf strips the time of day, keeping t's calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
