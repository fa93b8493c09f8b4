package repository

import (
	"context"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.UserProfile, error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error
}

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Patient, error)
}

type AccountRepository interface {
	Create(ctx context.Context, db *gorm.DB, account *entity.Account) error
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID int64) (*entity.Account, error)
}
