package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ClosureDay marks a calendar date on which no slot is offered.
type ClosureDay struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Date      datatypes.Date `gorm:"uniqueIndex;not null" json:"date"`
	Reason    string         `gorm:"type:varchar(200)" json:"reason,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (ClosureDay) TableName() string {
	return "closure_days"
}

// Day returns the closure date as YYYY-MM-DD.
func (c *ClosureDay) Day() string {
	return time.Time(c.Date).Format(DateLayout)
}

// DateLayout is the calendar date format used across the API.
const DateLayout = "2006-01-02"
