package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusDone      AppointmentStatus = "done"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists every status in lifecycle order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusDone,
	AppointmentStatusCancelled,
}

// Priority orders the waiting queue; urgent entries come first.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityUrgent
}

// Appointment is a patient request for a slot.
type Appointment struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string            `gorm:"type:varchar(200);not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	ScheduledAt time.Time         `gorm:"not null;index" json:"scheduled_at"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Status      AppointmentStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	Priority    Priority          `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	ServiceID   *int64            `gorm:"index" json:"service_id,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User    *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Service *Service     `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Ticket  *QueueTicket `gorm:"foreignKey:AppointmentID" json:"ticket,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if the appointment is waiting in the queue
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsUrgent checks if the appointment has urgent priority
func (a *Appointment) IsUrgent() bool {
	return a.Priority == PriorityUrgent
}

// Confirm marks the appointment as called from the queue
func (a *Appointment) Confirm() {
	a.Status = AppointmentStatusConfirmed
}

// Complete marks the patient as seen
func (a *Appointment) Complete() {
	a.Status = AppointmentStatusDone
}

// Cancel changes appointment status to cancelled
func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}

// AppointmentFilter is a domain-level filter for querying appointments.
// Nil bounds are open; From and To are inclusive on ScheduledAt.
type AppointmentFilter struct {
	UserID   *uuid.UUID
	From     *time.Time
	To       *time.Time
	Statuses []AppointmentStatus
	Exclude  []AppointmentStatus
	Newest   bool
	Limit    int
}

// AppointmentCount is one row of the status/priority breakdown used by reports.
type AppointmentCount struct {
	Status   AppointmentStatus
	Priority Priority
	Count    int64
}
