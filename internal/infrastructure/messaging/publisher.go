// Package messaging publishes appointment lifecycle events.
package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types carried in AppointmentEvent.Type.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentConfirmed = "appointment.confirmed"
	EventAppointmentDone      = "appointment.done"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentPriority  = "appointment.priority_changed"
)

// AppointmentEvent is the message body written to the events topic.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	AppointmentID int64     `json:"appointment_id"`
	UserID        uuid.UUID `json:"user_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	TicketNumber  int       `json:"ticket_number,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event AppointmentEvent) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher is used when no Kafka broker is configured.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, AppointmentEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
