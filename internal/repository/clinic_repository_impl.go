package repository

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

// Service Repository

type serviceRepository struct{}

func NewServiceRepository() domainRepo.ServiceRepository {
	return &serviceRepository{}
}

func (r *serviceRepository) Create(ctx context.Context, db *gorm.DB, service *entity.Service) error {
	return db.WithContext(ctx).Create(service).Error
}

func (r *serviceRepository) FindAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]entity.Service, int64, error) {
	var services []entity.Service
	var total int64

	if err := db.WithContext(ctx).Model(&entity.Service{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.WithContext(ctx).Order("name ASC, id ASC").Limit(limit).Offset(offset).Find(&services).Error; err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

func (r *serviceRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Service, error) {
	var service entity.Service
	err := db.WithContext(ctx).Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, db *gorm.DB, service *entity.Service) error {
	return db.WithContext(ctx).Save(service).Error
}

// Delete removes the service; appointments keep existing with service_id set to NULL.
func (r *serviceRepository) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Service{})
	return result.RowsAffected, result.Error
}

// Clinic Hours Repository

type clinicHoursRepository struct{}

func NewClinicHoursRepository() domainRepo.ClinicHoursRepository {
	return &clinicHoursRepository{}
}

func (r *clinicHoursRepository) Create(ctx context.Context, db *gorm.DB, hours *entity.ClinicHours) error {
	return db.WithContext(ctx).Create(hours).Error
}

func (r *clinicHoursRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.ClinicHours, error) {
	var hours []entity.ClinicHours
	if err := db.WithContext(ctx).Order("weekday ASC, opens_at ASC").Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *clinicHoursRepository) FindActive(ctx context.Context, db *gorm.DB) ([]entity.ClinicHours, error) {
	var hours []entity.ClinicHours
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("weekday ASC, opens_at ASC").
		Find(&hours).Error
	if err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *clinicHoursRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.ClinicHours, error) {
	var hours entity.ClinicHours
	err := db.WithContext(ctx).Where("id = ?", id).First(&hours).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hours, nil
}

func (r *clinicHoursRepository) Update(ctx context.Context, db *gorm.DB, hours *entity.ClinicHours) error {
	return db.WithContext(ctx).Save(hours).Error
}

func (r *clinicHoursRepository) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ClinicHours{})
	return result.RowsAffected, result.Error
}

// Closure Day Repository

type closureDayRepository struct{}

func NewClosureDayRepository() domainRepo.ClosureDayRepository {
	return &closureDayRepository{}
}

func (r *closureDayRepository) Create(ctx context.Context, db *gorm.DB, day *entity.ClosureDay) error {
	return db.WithContext(ctx).Create(day).Error
}

func (r *closureDayRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.ClosureDay, error) {
	var days []entity.ClosureDay
	if err := db.WithContext(ctx).Order("date ASC").Find(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

func (r *closureDayRepository) FindBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]entity.ClosureDay, error) {
	var days []entity.ClosureDay
	err := db.WithContext(ctx).
		Where("date >= ? AND date < ?", from.Format(entity.DateLayout), to.Format(entity.DateLayout)).
		Order("date ASC").
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}

func (r *closureDayRepository) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ClosureDay{})
	return result.RowsAffected, result.Error
}
