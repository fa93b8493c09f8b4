package repository

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type ServiceRepository interface {
	Create(ctx context.Context, db *gorm.DB, service *entity.Service) error
	FindAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]entity.Service, int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Service, error)
	Update(ctx context.Context, db *gorm.DB, service *entity.Service) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}

type ClinicHoursRepository interface {
	Create(ctx context.Context, db *gorm.DB, hours *entity.ClinicHours) error
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.ClinicHours, error)
	FindActive(ctx context.Context, db *gorm.DB) ([]entity.ClinicHours, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.ClinicHours, error)
	Update(ctx context.Context, db *gorm.DB, hours *entity.ClinicHours) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}

type ClosureDayRepository interface {
	Create(ctx context.Context, db *gorm.DB, day *entity.ClosureDay) error
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.ClosureDay, error)
	// FindBetween returns closures with from <= date < to.
	FindBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]entity.ClosureDay, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}
