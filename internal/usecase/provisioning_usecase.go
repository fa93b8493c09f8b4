package usecase

import (
	"context"
	"errors"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidRole = errors.New("invalid role")

// ProvisioningUsecase creates the records every identity depends on. It runs
// inside the caller's transaction and is idempotent.
type ProvisioningUsecase interface {
	// Provision makes sure user has a profile, created with role when absent,
	// and for the user role a patient with an account.
	Provision(ctx context.Context, tx *gorm.DB, user *entity.User, role entity.Role) (*entity.UserProfile, error)
	// EnsurePatient creates the patient and its zero balance account when the
	// profile has the user role and they do not exist yet.
	EnsurePatient(ctx context.Context, tx *gorm.DB, user *entity.User, profile *entity.UserProfile) (*entity.Patient, error)
}

type provisioningUsecase struct {
	log         *logrus.Logger
	profileRepo repository.ProfileRepository
	patientRepo repository.PatientRepository
	accountRepo repository.AccountRepository
}

func NewProvisioningUsecase(
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	patientRepo repository.PatientRepository,
	accountRepo repository.AccountRepository,
) ProvisioningUsecase {
	return &provisioningUsecase{
		log:         log,
		profileRepo: profileRepo,
		patientRepo: patientRepo,
		accountRepo: accountRepo,
	}
}

func (u *provisioningUsecase) Provision(ctx context.Context, tx *gorm.DB, user *entity.User, role entity.Role) (*entity.UserProfile, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	profile, err := u.profileRepo.FindByUserID(ctx, tx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to find profile for user %s: %+v", user.ID, err)
		return nil, err
	}

	if profile == nil {
		profile = &entity.UserProfile{
			UserID:      user.ID,
			Role:        role,
			DisplayName: user.DefaultDisplayName(),
		}
		if err := u.profileRepo.Create(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to create profile for user %s: %+v", user.ID, err)
			return nil, err
		}
		u.log.Infof("Provisioned %s profile for user %s", role, user.ID)
	}

	if _, err := u.EnsurePatient(ctx, tx, user, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (u *provisioningUsecase) EnsurePatient(ctx context.Context, tx *gorm.DB, user *entity.User, profile *entity.UserProfile) (*entity.Patient, error) {
	if profile.Role != entity.RoleUser {
		return nil, nil
	}

	patient, err := u.patientRepo.FindByUserID(ctx, tx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to find patient for user %s: %+v", user.ID, err)
		return nil, err
	}

	if patient == nil {
		name := profile.DisplayName
		if name == "" {
			name = user.Email
		}
		patient = &entity.Patient{UserID: user.ID, Name: name}
		if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
			u.log.Warnf("Failed to create patient for user %s: %+v", user.ID, err)
			return nil, err
		}
	} else if patient.Account != nil {
		return patient, nil
	}

	account, err := u.accountRepo.FindByPatientID(ctx, tx, patient.ID)
	if err != nil {
		u.log.Warnf("Failed to find account for patient %d: %+v", patient.ID, err)
		return nil, err
	}
	if account == nil {
		account = &entity.Account{PatientID: patient.ID, Balance: decimal.Zero}
		if err := u.accountRepo.Create(ctx, tx, account); err != nil {
			u.log.Warnf("Failed to create account for patient %d: %+v", patient.ID, err)
			return nil, err
		}
		u.log.Infof("Provisioned patient %d with account for user %s", patient.ID, user.ID)
	}
	patient.Account = account

	return patient, nil
}
