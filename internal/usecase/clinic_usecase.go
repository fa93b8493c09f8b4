package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/policy"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LandingServices is how many services the public landing page shows.
const LandingServices = 8

var (
	ErrClinicHoursNotFound = errors.New("clinic hours not found")
	ErrInvalidHours        = errors.New("opening time must be before closing time")
	ErrClosureDayNotFound  = errors.New("closure day not found")
	ErrClosureDayExists    = errors.New("this date is already closed")
)

// ClinicUsecase configures what the slot calculator works from: weekly
// opening hours, closure days and the service catalogue.
type ClinicUsecase interface {
	ListHours(ctx context.Context, actor entity.Actor) ([]dto.ClinicHoursResponse, error)
	CreateHours(ctx context.Context, actor entity.Actor, req *dto.ClinicHoursRequest) (*dto.ClinicHoursResponse, error)
	UpdateHours(ctx context.Context, actor entity.Actor, id int64, req *dto.ClinicHoursRequest) (*dto.ClinicHoursResponse, error)
	DeleteHours(ctx context.Context, actor entity.Actor, id int64) error

	ListClosures(ctx context.Context, actor entity.Actor) ([]dto.ClosureDayResponse, error)
	CreateClosure(ctx context.Context, actor entity.Actor, req *dto.ClosureDayRequest) (*dto.ClosureDayResponse, error)
	DeleteClosure(ctx context.Context, actor entity.Actor, id int64) error

	// ListServices and GetService are public.
	ListServices(ctx context.Context, page, limit int) (*dto.ServiceListResponse, error)
	GetService(ctx context.Context, id int64) (*dto.ServiceResponse, error)
	CreateService(ctx context.Context, actor entity.Actor, req *dto.ServiceRequest) (*dto.ServiceResponse, error)
	UpdateService(ctx context.Context, actor entity.Actor, id int64, req *dto.ServiceRequest) (*dto.ServiceResponse, error)
	DeleteService(ctx context.Context, actor entity.Actor, id int64) error
}

type clinicUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	hoursRepo    repository.ClinicHoursRepository
	closureRepo  repository.ClosureDayRepository
	serviceRepo  repository.ServiceRepository
	auditService service.AuditService
}

func NewClinicUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	hoursRepo repository.ClinicHoursRepository,
	closureRepo repository.ClosureDayRepository,
	serviceRepo repository.ServiceRepository,
	auditService service.AuditService,
) ClinicUsecase {
	return &clinicUsecase{
		tx:           tx,
		log:          log,
		hoursRepo:    hoursRepo,
		closureRepo:  closureRepo,
		serviceRepo:  serviceRepo,
		auditService: auditService,
	}
}

// Clinic hours

func (u *clinicUsecase) ListHours(ctx context.Context, actor entity.Actor) ([]dto.ClinicHoursResponse, error) {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return nil, err
	}

	hours, err := u.hoursRepo.FindAll(ctx, u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find clinic hours: %+v", err)
		return nil, err
	}
	return converter.ClinicHoursToResponses(hours), nil
}

func (u *clinicUsecase) CreateHours(ctx context.Context, actor entity.Actor, req *dto.ClinicHoursRequest) (*dto.ClinicHoursResponse, error) {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return nil, err
	}

	hours := &entity.ClinicHours{Active: true}
	if err := applyHours(hours, req); err != nil {
		return nil, err
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.hoursRepo.Create(ctx, tx, hours); err != nil {
			u.log.Warnf("Failed to create clinic hours: %+v", err)
			return err
		}
		resp := converter.ClinicHoursToResponse(hours)
		return u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionClinicHoursCreate, "clinic_hours", idString(hours.ID), resp)
	})
	if err != nil {
		return nil, err
	}

	resp := converter.ClinicHoursToResponse(hours)
	return &resp, nil
}

func (u *clinicUsecase) UpdateHours(ctx context.Context, actor entity.Actor, id int64, req *dto.ClinicHoursRequest) (*dto.ClinicHoursResponse, error) {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return nil, err
	}

	var hours *entity.ClinicHours
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		found, err := u.hoursRepo.FindByID(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find clinic hours: %+v", err)
			return err
		}
		if found == nil {
			return ErrClinicHoursNotFound
		}

		oldValue := converter.ClinicHoursToResponse(found)
		if err := applyHours(found, req); err != nil {
			return err
		}
		if err := u.hoursRepo.Update(ctx, tx, found); err != nil {
			u.log.Warnf("Failed to update clinic hours: %+v", err)
			return err
		}
		hours = found

		return u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionClinicHoursUpdate, "clinic_hours", idString(id), oldValue, converter.ClinicHoursToResponse(found))
	})
	if err != nil {
		return nil, err
	}

	resp := converter.ClinicHoursToResponse(hours)
	return &resp, nil
}

func (u *clinicUsecase) DeleteHours(ctx context.Context, actor entity.Actor, id int64) error {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return err
	}

	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		found, err := u.hoursRepo.FindByID(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find clinic hours: %+v", err)
			return err
		}
		if found == nil {
			return ErrClinicHoursNotFound
		}

		if _, err := u.hoursRepo.Delete(ctx, tx, id); err != nil {
			u.log.Warnf("Failed to delete clinic hours: %+v", err)
			return err
		}

		return u.auditService.LogDelete(ctx, tx, &actor.UserID, entity.AuditActionClinicHoursDelete, "clinic_hours", idString(id), converter.ClinicHoursToResponse(found))
	})
}

func applyHours(hours *entity.ClinicHours, req *dto.ClinicHoursRequest) error {
	opens, err := entity.ParseClock(req.OpensAt)
	if err != nil {
		return ErrInvalidHours
	}
	closes, err := entity.ParseClock(req.ClosesAt)
	if err != nil {
		return ErrInvalidHours
	}
	if opens >= closes {
		return ErrInvalidHours
	}

	if req.Weekday != nil {
		hours.Weekday = *req.Weekday
	}
	hours.OpensAt = opens
	hours.ClosesAt = closes
	if req.Active != nil {
		hours.Active = *req.Active
	}
	return nil
}

// Closure days

func (u *clinicUsecase) ListClosures(ctx context.Context, actor entity.Actor) ([]dto.ClosureDayResponse, error) {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return nil, err
	}

	days, err := u.closureRepo.FindAll(ctx, u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find closure days: %+v", err)
		return nil, err
	}
	return converter.ClosureDaysToResponses(days), nil
}

func (u *clinicUsecase) CreateClosure(ctx context.Context, actor entity.Actor, req *dto.ClosureDayRequest) (*dto.ClosureDayResponse, error) {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return nil, err
	}

	date, err := time.Parse(entity.DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	day := &entity.ClosureDay{
		Date:   datatypes.Date(date),
		Reason: strings.TrimSpace(req.Reason),
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.closureRepo.Create(ctx, tx, day); err != nil {
			if isDuplicateKeyError(err, "date") {
				return ErrClosureDayExists
			}
			u.log.Warnf("Failed to create closure day: %+v", err)
			return err
		}
		return u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionClosureCreate, "closure_day", idString(day.ID), converter.ClosureDayToResponse(day))
	})
	if err != nil {
		return nil, err
	}

	resp := converter.ClosureDayToResponse(day)
	return &resp, nil
}

func (u *clinicUsecase) DeleteClosure(ctx context.Context, actor entity.Actor, id int64) error {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return err
	}

	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := u.closureRepo.Delete(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to delete closure day: %+v", err)
			return err
		}
		if rows == 0 {
			return ErrClosureDayNotFound
		}
		return u.auditService.LogDelete(ctx, tx, &actor.UserID, entity.AuditActionClosureDelete, "closure_day", idString(id), nil)
	})
}

// Services

func (u *clinicUsecase) ListServices(ctx context.Context, page, limit int) (*dto.ServiceListResponse, error) {
	page, limit, offset := paginate(page, limit)

	services, total, err := u.serviceRepo.FindAll(ctx, u.tx.Conn(ctx), limit, offset)
	if err != nil {
		u.log.Warnf("Failed to find services: %+v", err)
		return nil, err
	}

	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Page:     page,
		Limit:    limit,
		Total:    total,
	}, nil
}

func (u *clinicUsecase) GetService(ctx context.Context, id int64) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(ctx, u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find service: %+v", err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return converter.ServiceToResponse(svc), nil
}

func (u *clinicUsecase) CreateService(ctx context.Context, actor entity.Actor, req *dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return nil, err
	}

	svc := &entity.Service{}
	applyService(svc, req)

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.serviceRepo.Create(ctx, tx, svc); err != nil {
			u.log.Warnf("Failed to create service: %+v", err)
			return err
		}
		return u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionServiceCreate, "service", idString(svc.ID), req)
	})
	if err != nil {
		return nil, err
	}

	return converter.ServiceToResponse(svc), nil
}

func (u *clinicUsecase) UpdateService(ctx context.Context, actor entity.Actor, id int64, req *dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return nil, err
	}

	var svc *entity.Service
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		found, err := u.serviceRepo.FindByID(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find service: %+v", err)
			return err
		}
		if found == nil {
			return ErrServiceNotFound
		}

		oldValue := converter.ServiceToResponse(found)
		applyService(found, req)
		if err := u.serviceRepo.Update(ctx, tx, found); err != nil {
			u.log.Warnf("Failed to update service: %+v", err)
			return err
		}
		svc = found

		return u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionServiceUpdate, "service", idString(id), oldValue, req)
	})
	if err != nil {
		return nil, err
	}

	return converter.ServiceToResponse(svc), nil
}

// DeleteService keeps appointments that referenced the service; they lose the link.
func (u *clinicUsecase) DeleteService(ctx context.Context, actor entity.Actor, id int64) error {
	if err := policy.Authorize(actor, policy.ConfigureClinic); err != nil {
		return err
	}

	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := u.serviceRepo.Delete(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to delete service: %+v", err)
			return err
		}
		if rows == 0 {
			return ErrServiceNotFound
		}
		return u.auditService.LogDelete(ctx, tx, &actor.UserID, entity.AuditActionServiceDelete, "service", idString(id), nil)
	})
}

func applyService(svc *entity.Service, req *dto.ServiceRequest) {
	svc.Name = strings.TrimSpace(req.Name)
	svc.DurationMinutes = req.DurationMinutes
	if svc.DurationMinutes <= 0 {
		svc.DurationMinutes = entity.DefaultServiceDuration
	}
	svc.Description = strings.TrimSpace(req.Description)
	svc.ImageURL = strings.TrimSpace(req.ImageURL)
}
