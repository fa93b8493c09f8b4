package usecase

import (
	"context"
	"strconv"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/infrastructure/messaging"

	"github.com/sirupsen/logrus"
)

// publishEvent runs after commit. A failed publish is logged and does not
// undo the change.
func publishEvent(ctx context.Context, publisher messaging.EventPublisher, log *logrus.Logger, eventType string, a *entity.Appointment, at time.Time) {
	event := messaging.AppointmentEvent{
		Type:          eventType,
		AppointmentID: a.ID,
		UserID:        a.UserID,
		ScheduledAt:   a.ScheduledAt,
		Status:        string(a.Status),
		Priority:      string(a.Priority),
		OccurredAt:    at.UTC(),
	}
	if a.Ticket != nil {
		event.TicketNumber = a.Ticket.TicketNumber
	}

	if err := publisher.Publish(ctx, event); err != nil {
		log.WithFields(logrus.Fields{
			"event":          eventType,
			"appointment_id": a.ID,
		}).Warnf("Failed to publish appointment event: %+v", err)
	}
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
