// Package slot computes the bookable appointment slots of the clinic.
package slot

import (
	"fmt"
	"sort"
	"time"

	"clinic-booking/internal/domain/entity"
)

const (
	// WindowDays is how far ahead slots are offered, today included.
	WindowDays = 28
	// Step is the length of one slot.
	Step = 30 * time.Minute
	// MaxSlots caps the number of slots returned.
	MaxSlots = 200
)

// Slot is one bookable start time.
type Slot struct {
	At    time.Time
	Label string
}

// Value is the RFC 3339 form a client submits back when booking.
func (s Slot) Value() string {
	return s.At.Format(time.RFC3339)
}

// Closed is the set of closure dates keyed by YYYY-MM-DD.
type Closed map[string]struct{}

// ClosedFrom builds the closure set from stored closure days.
func ClosedFrom(days []entity.ClosureDay) Closed {
	closed := make(Closed, len(days))
	for i := range days {
		closed[days[i].Day()] = struct{}{}
	}
	return closed
}

// Taken is the set of instants held by non-cancelled appointments, keyed by Unix seconds.
type Taken map[int64]struct{}

// TakenFrom builds the taken set from appointment timestamps.
func TakenFrom(times []time.Time) Taken {
	taken := make(Taken, len(times))
	for _, t := range times {
		taken[t.Unix()] = struct{}{}
	}
	return taken
}

// Window returns the [start, end) range covered by Available for the given instant.
func Window(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, WindowDays)
}

// Available walks the next WindowDays calendar days in loc and returns the
// free slots, earliest first. Closed dates are skipped, inactive hours are
// ignored, slots of the current day that are not strictly after now are
// dropped, and so are slots already taken.
func Available(now time.Time, loc *time.Location, hours []entity.ClinicHours, closed Closed, taken Taken) []Slot {
	byDay := make(map[int][]entity.ClinicHours)
	for _, h := range hours {
		if !h.Active {
			continue
		}
		byDay[h.Weekday] = append(byDay[h.Weekday], h)
	}
	for day := range byDay {
		windows := byDay[day]
		sort.SliceStable(windows, func(i, j int) bool {
			return windows[i].Open() < windows[j].Open()
		})
	}

	start, _ := Window(now, loc)
	slots := make([]Slot, 0, MaxSlots)

	for d := 0; d < WindowDays; d++ {
		date := time.Date(start.Year(), start.Month(), start.Day()+d, 0, 0, 0, 0, loc)
		if _, ok := closed[date.Format(entity.DateLayout)]; ok {
			continue
		}

		weekday := entity.WeekdayOf(date)
		for _, h := range byDay[weekday] {
			for offset := h.Open(); offset < h.Close(); offset += Step {
				at := atOffset(date, offset)
				if d == 0 && !at.After(now) {
					continue
				}
				if _, ok := taken[at.Unix()]; ok {
					continue
				}
				slots = append(slots, Slot{At: at, Label: Label(at)})
				if len(slots) == MaxSlots {
					return slots
				}
			}
		}
	}

	return slots
}

// Contains reports whether at is one of the offered slots.
func Contains(slots []Slot, at time.Time) bool {
	for _, s := range slots {
		if s.At.Equal(at) {
			return true
		}
	}
	return false
}

// Label renders a slot as "Monday 19/10/2026 at 09:00".
func Label(at time.Time) string {
	return fmt.Sprintf("%s %s at %s", entity.WeekdayName(entity.WeekdayOf(at)), at.Format("02/01/2006"), at.Format("15:04"))
}

// atOffset builds the wall-clock time on date at offset from midnight,
// so DST shifts do not move slots off the half hour.
func atOffset(date time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
}
