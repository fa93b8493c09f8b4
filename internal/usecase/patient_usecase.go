package usecase

import (
	"context"
	"errors"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
)

var ErrPatientNotFound = errors.New("no patient record for this account")

type PatientUsecase interface {
	GetMyPatient(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	tx          database.Transactor
	log         *logrus.Logger
	patientRepo repository.PatientRepository
}

func NewPatientUsecase(tx database.Transactor, log *logrus.Logger, patientRepo repository.PatientRepository) PatientUsecase {
	return &patientUsecase{
		tx:          tx,
		log:         log,
		patientRepo: patientRepo,
	}
}

func (u *patientUsecase) GetMyPatient(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByUserID(ctx, u.tx.Conn(ctx), actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient for user %s: %+v", actor.UserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}
