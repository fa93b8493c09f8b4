package entity

import (
	"time"

	"gorm.io/datatypes"
)

// QueueTicket is the numbered ticket handed out when an appointment is booked.
// Numbers restart every day.
type QueueTicket struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketDay     datatypes.Date `gorm:"not null;uniqueIndex:ux_queue_tickets_day_number" json:"ticket_day"`
	TicketNumber  int            `gorm:"not null;uniqueIndex:ux_queue_tickets_day_number" json:"ticket_number"`
	Priority      Priority       `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	AppointmentID *int64         `gorm:"uniqueIndex" json:"appointment_id,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (QueueTicket) TableName() string {
	return "queue_tickets"
}
