package repository

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type queueTicketRepository struct{}

func NewQueueTicketRepository() domainRepo.QueueTicketRepository {
	return &queueTicketRepository{}
}

func (r *queueTicketRepository) Create(ctx context.Context, db *gorm.DB, ticket *entity.QueueTicket) error {
	return db.WithContext(ctx).Create(ticket).Error
}

func (r *queueTicketRepository) FindByAppointmentIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]entity.QueueTicket, error) {
	var tickets []entity.QueueTicket
	if len(ids) == 0 {
		return tickets, nil
	}
	if err := db.WithContext(ctx).Where("appointment_id IN ?", ids).Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *queueTicketRepository) UpdatePriority(ctx context.Context, db *gorm.DB, appointmentID int64, priority entity.Priority) error {
	return db.WithContext(ctx).Model(&entity.QueueTicket{}).
		Where("appointment_id = ?", appointmentID).
		Update("priority", priority).Error
}

func (r *queueTicketRepository) MaxNumber(ctx context.Context, db *gorm.DB, day time.Time) (int, error) {
	var max int
	err := db.WithContext(ctx).Model(&entity.QueueTicket{}).
		Select("COALESCE(MAX(ticket_number), 0)").
		Where("ticket_day = ?", day.Format(entity.DateLayout)).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}
