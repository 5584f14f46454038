package clock

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now so a simulated date can be configured at startup.
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// New returns a Clock reading wall time in loc (UTC when nil).
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
