package usecase

import "time"

// Clock carries the clinic time zone and the source of the current instant.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Location: loc, Now: time.Now}
}

// Today is midnight of the current date in the clinic time zone.
func (c Clock) Today() time.Time {
	now := c.Now().In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location)
}

// ticketDay is the calendar date of t in the clinic time zone, at UTC
// midnight as stored in date columns.
func (c Clock) ticketDay(t time.Time) time.Time {
	local := t.In(c.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// TicketDay is today's date as used by the queue ticket counters.
func (c Clock) TicketDay() time.Time {
	return c.ticketDay(c.Now())
}
