package entity

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Weekday numbering used by clinic hours: 0 is Monday, 6 is Sunday.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayOf converts t to the clinic weekday index.
func WeekdayOf(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayName returns the English name of a clinic weekday index.
func WeekdayName(day int) string {
	if day < 0 || day >= len(weekdayNames) {
		return ""
	}
	return weekdayNames[day]
}

// ClinicHours is a recurring weekly opening window.
type ClinicHours struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Weekday   int            `gorm:"not null;index" json:"weekday"`
	OpensAt   datatypes.Time `gorm:"not null" json:"opens_at"`
	ClosesAt  datatypes.Time `gorm:"not null" json:"closes_at"`
	Active    bool           `gorm:"not null;index" json:"active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClinicHours) TableName() string {
	return "clinic_hours"
}

// Open returns the opening time as an offset from midnight.
func (h *ClinicHours) Open() time.Duration {
	return time.Duration(h.OpensAt)
}

// Close returns the closing time as an offset from midnight.
func (h *ClinicHours) Close() time.Duration {
	return time.Duration(h.ClosesAt)
}

// FormatClock renders an offset from midnight as HH:MM.
func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int((d%time.Hour)/time.Minute))
}

// ParseClock parses HH:MM into a time of day.
func ParseClock(s string) (datatypes.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return datatypes.NewTime(t.Hour(), t.Minute(), 0, 0), nil
}
