package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	// Slot is the RFC 3339 value of one of the offered slots.
	Slot      string `json:"slot" validate:"required"`
	ServiceID *int64 `json:"service_id" validate:"omitempty,gt=0"`
}

type SetPriorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=normal urgent"`
}

// Response DTOs

type AppointmentResponse struct {
	ID           int64            `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	ScheduledAt  time.Time        `json:"scheduled_at"`
	Label        string           `json:"label"`
	UserID       uuid.UUID        `json:"user_id"`
	PatientName  string           `json:"patient_name,omitempty"`
	Status       string           `json:"status"`
	Priority     string           `json:"priority"`
	Service      *ServiceResponse `json:"service,omitempty"`
	TicketNumber int              `json:"ticket_number,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SlotResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Total int            `json:"total"`
}

type QueueEntryResponse struct {
	Position      int       `json:"position"`
	AppointmentID int64     `json:"appointment_id"`
	Label         string    `json:"label"`
	IsMine        bool      `json:"is_mine"`
	Title         string    `json:"title"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Priority      string    `json:"priority"`
	TicketNumber  int       `json:"ticket_number,omitempty"`
}

type QueueResponse struct {
	Entries []QueueEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
}

// NextAppointmentResponse carries a nil appointment when the queue is empty.
type NextAppointmentResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
}

type AgentDashboardResponse struct {
	Date         string                `json:"date"`
	Appointments []AppointmentResponse `json:"appointments"`
	Next         *AppointmentResponse  `json:"next"`
}
