package repository

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit("User", "Service", "Ticket").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Service").
		Preload("Ticket").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByFilter(ctx context.Context, db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment

	query := db.WithContext(ctx).Model(&entity.Appointment{}).
		Preload("Service").
		Preload("Ticket").
		Preload("User.Profile").
		Preload("User.Patient")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_at <= ?", *filter.To)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Exclude) > 0 {
		query = query.Where("status NOT IN ?", filter.Exclude)
	}
	if filter.Newest {
		query = query.Order("scheduled_at DESC, id DESC")
	} else {
		query = query.Order("scheduled_at ASC, id ASC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindPending(ctx context.Context, db *gorm.DB, forUpdate bool) ([]entity.Appointment, error) {
	var appointments []entity.Appointment

	query := db.WithContext(ctx).Where("status = ?", entity.AppointmentStatusPending)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	} else {
		query = query.Preload("User.Profile").Preload("User.Patient").Preload("Ticket")
	}
	if err := query.Order("id ASC").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) TakenTimes(ctx context.Context, db *gorm.DB, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("status <> ? AND scheduled_at >= ? AND scheduled_at < ?", entity.AppointmentStatusCancelled, from, to).
		Pluck("scheduled_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

// UpdateStatus is a conditional update when from is given, so two concurrent
// transitions cannot both succeed: the loser sees 0 affected rows.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status entity.AppointmentStatus, from ...entity.AppointmentStatus) (int64, error) {
	query := db.WithContext(ctx).Model(&entity.Appointment{}).Where("id = ?", id)
	if len(from) > 0 {
		query = query.Where("status IN ?", from)
	}
	result := query.Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdatePriority(ctx context.Context, db *gorm.DB, id int64, priority entity.Priority) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
		Updates(map[string]interface{}{
			"priority":   priority,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) CountGrouped(ctx context.Context, db *gorm.DB, from, to *time.Time) ([]entity.AppointmentCount, error) {
	var rows []entity.AppointmentCount

	query := db.WithContext(ctx).Model(&entity.Appointment{}).
		Select("status, priority, COUNT(*) AS count")
	if from != nil {
		query = query.Where("scheduled_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("scheduled_at <= ?", *to)
	}
	if err := query.Group("status, priority").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
