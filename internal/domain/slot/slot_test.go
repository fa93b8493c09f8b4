package slot

import (
	"strings"
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"

	"gorm.io/datatypes"
)

func hours(weekday, openH, openM, closeH, closeM int) entity.ClinicHours {
	return entity.ClinicHours{
		Weekday:  weekday,
		OpensAt:  datatypes.NewTime(openH, openM, 0, 0),
		ClosesAt: datatypes.NewTime(closeH, closeM, 0, 0),
		Active:   true,
	}
}

func closure(y int, m time.Month, d int) entity.ClosureDay {
	return entity.ClosureDay{Date: datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))}
}

// Sunday 18 October 2026, 10:00 UTC.
var sunday = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)

func TestAvailable_MondayMorningOnly(t *testing.T) {
	got := Available(sunday, time.UTC, []entity.ClinicHours{hours(entity.Monday, 9, 0, 9, 30)}, nil, nil)

	// Four Mondays fall inside the 28 day window, one slot each.
	if len(got) != 4 {
		t.Fatalf("expected 4 slots, got %d: %+v", len(got), got)
	}
	if got[0].Label != "Monday 19/10/2026 at 09:00" {
		t.Errorf("first label = %q", got[0].Label)
	}
	for _, s := range got {
		if entity.WeekdayOf(s.At) != entity.Monday || s.At.Hour() != 9 || s.At.Minute() != 0 {
			t.Errorf("unexpected slot %v", s.At)
		}
	}

	// Booking the first slot removes it from the next computation.
	taken := TakenFrom([]time.Time{got[0].At})
	again := Available(sunday, time.UTC, []entity.ClinicHours{hours(entity.Monday, 9, 0, 9, 30)}, nil, taken)
	if len(again) != 3 {
		t.Fatalf("expected 3 slots after booking, got %d", len(again))
	}
	if Contains(again, got[0].At) {
		t.Error("booked slot is still offered")
	}
}

func TestAvailable_SkipsClosureDays(t *testing.T) {
	closed := ClosedFrom([]entity.ClosureDay{closure(2026, time.October, 26)})
	got := Available(sunday, time.UTC, []entity.ClinicHours{hours(entity.Monday, 9, 0, 12, 0)}, closed, nil)

	if len(got) != 3*6 {
		t.Fatalf("expected 18 slots, got %d", len(got))
	}
	for _, s := range got {
		if s.At.Format(entity.DateLayout) == "2026-10-26" {
			t.Fatalf("slot offered on closure day: %s", s.Label)
		}
	}
}

func TestAvailable_TodayOnlyStrictlyFuture(t *testing.T) {
	now := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC) // Monday
	got := Available(now, time.UTC, []entity.ClinicHours{hours(entity.Monday, 8, 0, 10, 0)}, nil, nil)

	var today []time.Time
	for _, s := range got {
		if s.At.Day() == 19 && s.At.Month() == time.October {
			today = append(today, s.At)
		}
	}
	if len(today) != 1 || today[0].Hour() != 9 || today[0].Minute() != 30 {
		t.Fatalf("expected only 09:30 today, got %v", today)
	}
	// 1 today + 3 later Mondays with 4 slots each.
	if len(got) != 1+3*4 {
		t.Fatalf("expected 13 slots, got %d", len(got))
	}
}

func TestAvailable_IgnoresInactiveHours(t *testing.T) {
	h := hours(entity.Monday, 9, 0, 10, 0)
	h.Active = false
	if got := Available(sunday, time.UTC, []entity.ClinicHours{h}, nil, nil); len(got) != 0 {
		t.Fatalf("expected no slots, got %d", len(got))
	}
}

func TestAvailable_CapsAndOrders(t *testing.T) {
	var all []entity.ClinicHours
	for d := entity.Monday; d <= entity.Sunday; d++ {
		all = append(all, hours(d, 0, 0, 23, 30))
	}
	got := Available(sunday, time.UTC, all, nil, nil)
	if len(got) != MaxSlots {
		t.Fatalf("expected %d slots, got %d", MaxSlots, len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].At.Before(got[i].At) {
			t.Fatalf("slots not strictly increasing at %d: %v then %v", i, got[i-1].At, got[i].At)
		}
	}
}

func TestAvailable_MultipleWindowsSameDay(t *testing.T) {
	afternoon := hours(entity.Tuesday, 14, 0, 15, 0)
	morning := hours(entity.Tuesday, 9, 0, 10, 0)
	got := Available(sunday, time.UTC, []entity.ClinicHours{afternoon, morning}, nil, nil)

	if len(got) < 4 {
		t.Fatalf("expected at least 4 slots, got %d", len(got))
	}
	wantHours := []int{9, 9, 14, 14}
	for i, h := range wantHours {
		if got[i].At.Hour() != h {
			t.Errorf("slot %d hour = %d, want %d", i, got[i].At.Hour(), h)
		}
	}
}

func TestAvailable_EverySlotInsideHoursAndFree(t *testing.T) {
	hs := []entity.ClinicHours{
		hours(entity.Monday, 8, 30, 12, 0),
		hours(entity.Wednesday, 13, 0, 17, 0),
		hours(entity.Friday, 9, 0, 9, 45),
	}
	taken := TakenFrom([]time.Time{
		time.Date(2026, time.October, 21, 13, 30, 0, 0, time.UTC),
		time.Date(2026, time.October, 23, 9, 0, 0, 0, time.UTC),
	})
	got := Available(sunday, time.UTC, hs, nil, taken)

	for _, s := range got {
		if _, ok := taken[s.At.Unix()]; ok {
			t.Fatalf("taken slot offered: %s", s.Label)
		}
		offset := time.Duration(s.At.Hour())*time.Hour + time.Duration(s.At.Minute())*time.Minute
		inside := false
		for _, h := range hs {
			if h.Weekday == entity.WeekdayOf(s.At) && offset >= h.Open() && offset < h.Close() {
				inside = true
			}
		}
		if !inside {
			t.Fatalf("slot %s outside clinic hours", s.Label)
		}
	}
}

func TestAvailable_KeepsWallClockAcrossDST(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	got := Available(sunday, paris, []entity.ClinicHours{hours(entity.Sunday, 9, 0, 10, 0)}, nil, nil)

	// 18 Oct slots are in the past (10:00 UTC is 12:00 in Paris); 25 Oct, 1 Nov and 8 Nov remain.
	if len(got) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(got))
	}
	for _, s := range got {
		local := s.At.In(paris)
		if local.Hour() != 9 {
			t.Errorf("slot %v not at 09:xx local", local)
		}
		if !strings.HasPrefix(s.Label, "Sunday ") {
			t.Errorf("label %q", s.Label)
		}
	}
}

func TestWindow(t *testing.T) {
	start, end := Window(sunday, time.UTC)
	if !start.Equal(time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end.Sub(start) != WindowDays*24*time.Hour {
		t.Errorf("window = %v", end.Sub(start))
	}
}

func TestSlotValue(t *testing.T) {
	s := Slot{At: time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)}
	if s.Value() != "2026-10-19T09:00:00Z" {
		t.Fatalf("value = %q", s.Value())
	}
}
