package repository

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Appointment, error)
	FindByFilter(ctx context.Context, db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	// FindPending loads every pending appointment with its owner and ticket.
	// With forUpdate the rows are locked until the surrounding transaction
	// ends and relations are not loaded.
	FindPending(ctx context.Context, db *gorm.DB, forUpdate bool) ([]entity.Appointment, error)
	// TakenTimes returns scheduled_at of non-cancelled appointments in [from, to).
	TakenTimes(ctx context.Context, db *gorm.DB, from, to time.Time) ([]time.Time, error)
	// UpdateStatus moves an appointment to status. When from is not empty the
	// row only changes if its current status is one of them. Returns affected rows.
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status entity.AppointmentStatus, from ...entity.AppointmentStatus) (int64, error)
	// UpdatePriority changes the priority of a pending appointment. Returns affected rows.
	UpdatePriority(ctx context.Context, db *gorm.DB, id int64, priority entity.Priority) (int64, error)
	CountGrouped(ctx context.Context, db *gorm.DB, from, to *time.Time) ([]entity.AppointmentCount, error)
}

type QueueTicketRepository interface {
	Create(ctx context.Context, db *gorm.DB, ticket *entity.QueueTicket) error
	FindByAppointmentIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]entity.QueueTicket, error)
	UpdatePriority(ctx context.Context, db *gorm.DB, appointmentID int64, priority entity.Priority) error
	// MaxNumber returns the highest ticket number issued on day, 0 when none.
	MaxNumber(ctx context.Context, db *gorm.DB, day time.Time) (int, error)
}
