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
	"clinic-booking/internal/domain/queue"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/slot"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/infrastructure/messaging"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSlotRequired        = errors.New("please choose a time slot")
	ErrInvalidSlot         = errors.New("invalid time slot")
	ErrSlotUnavailable     = errors.New("this time slot is not available")
	ErrSlotTaken           = errors.New("this time slot has just been booked, please choose another")
	ErrServiceNotFound     = errors.New("service not found")
	ErrTicketConflict      = errors.New("could not issue a queue ticket, please try again")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// AppointmentUsecase is the self-service side of the appointment lifecycle.
type AppointmentUsecase interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	List(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	Slots(ctx context.Context, actor entity.Actor) (*dto.SlotListResponse, error)
	Next(ctx context.Context, actor entity.Actor) (*dto.NextAppointmentResponse, error)
	Queue(ctx context.Context, actor entity.Actor) (*dto.QueueResponse, error)
}

type appointmentUsecase struct {
	tx              database.Transactor
	log             *logrus.Logger
	clock           Clock
	appointmentRepo repository.AppointmentRepository
	ticketRepo      repository.QueueTicketRepository
	hoursRepo       repository.ClinicHoursRepository
	closureRepo     repository.ClosureDayRepository
	serviceRepo     repository.ServiceRepository
	tickets         service.TicketCounter
	auditService    service.AuditService
	publisher       messaging.EventPublisher
}

func NewAppointmentUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	clock Clock,
	appointmentRepo repository.AppointmentRepository,
	ticketRepo repository.QueueTicketRepository,
	hoursRepo repository.ClinicHoursRepository,
	closureRepo repository.ClosureDayRepository,
	serviceRepo repository.ServiceRepository,
	tickets service.TicketCounter,
	auditService service.AuditService,
	publisher messaging.EventPublisher,
) AppointmentUsecase {
	return &appointmentUsecase{
		tx:              tx,
		log:             log,
		clock:           clock,
		appointmentRepo: appointmentRepo,
		ticketRepo:      ticketRepo,
		hoursRepo:       hoursRepo,
		closureRepo:     closureRepo,
		serviceRepo:     serviceRepo,
		tickets:         tickets,
		auditService:    auditService,
		publisher:       publisher,
	}
}

func (u *appointmentUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := policy.Authorize(actor, policy.BookAppointment); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(req.Slot)
	if raw == "" {
		return nil, ErrSlotRequired
	}
	scheduledAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, ErrInvalidSlot
	}

	now := u.clock.Now()
	appointment := &entity.Appointment{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		ScheduledAt: scheduledAt,
		UserID:      actor.UserID,
		Status:      entity.AppointmentStatusPending,
		Priority:    entity.PriorityNormal,
		ServiceID:   req.ServiceID,
	}
	day := u.clock.ticketDay(now)
	ticketClash := false

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		available, err := u.availableSlots(ctx, tx, now)
		if err != nil {
			return err
		}
		if !slot.Contains(available, scheduledAt) {
			return ErrSlotUnavailable
		}

		if req.ServiceID != nil {
			svc, err := u.serviceRepo.FindByID(ctx, tx, *req.ServiceID)
			if err != nil {
				u.log.Warnf("Failed to find service: %+v", err)
				return err
			}
			if svc == nil {
				return ErrServiceNotFound
			}
			appointment.Service = svc
		}

		if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
			switch {
			case isDuplicateKeyError(err, "active_slot"):
				return ErrSlotTaken
			case isForeignKeyError(err, "service"):
				return ErrServiceNotFound
			}
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}

		number, err := u.tickets.Next(ctx, tx, day)
		if err != nil {
			return err
		}
		ticket := &entity.QueueTicket{
			TicketDay:     datatypes.Date(day),
			TicketNumber:  number,
			Priority:      appointment.Priority,
			AppointmentID: &appointment.ID,
		}
		if err := u.ticketRepo.Create(ctx, tx, ticket); err != nil {
			if isDuplicateKeyError(err, "day_number") {
				ticketClash = true
				return ErrTicketConflict
			}
			u.log.Warnf("Failed to create queue ticket: %+v", err)
			return err
		}
		appointment.Ticket = ticket

		return u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentCreate, "appointment", idString(appointment.ID), map[string]interface{}{
			"scheduled_at":  appointment.ScheduledAt,
			"ticket_number": number,
		})
	})
	if err != nil {
		if ticketClash {
			// The counter fell behind the table; raise it for the next booking.
			if rerr := u.tickets.Resync(ctx, u.tx.Conn(ctx), day); rerr != nil {
				u.log.Warnf("Failed to resync ticket counter: %+v", rerr)
			}
		}
		return nil, err
	}

	u.log.Infof("Appointment %d booked for %s with ticket %d", appointment.ID, appointment.ScheduledAt.Format(time.RFC3339), appointment.Ticket.TicketNumber)
	publishEvent(ctx, u.publisher, u.log, messaging.EventAppointmentCreated, appointment, now)

	return converter.AppointmentToResponse(appointment, u.clock.Location), nil
}

func (u *appointmentUsecase) List(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	if err := policy.Authorize(actor, policy.ViewOwnAppointments); err != nil {
		return nil, err
	}

	filter := entity.AppointmentFilter{Newest: true}
	if !policy.Can(actor, policy.ViewAllAppointments) {
		filter.UserID = &actor.UserID
	}

	appointments, err := u.appointmentRepo.FindByFilter(ctx, u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments, u.clock.Location),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) Slots(ctx context.Context, actor entity.Actor) (*dto.SlotListResponse, error) {
	if err := policy.Authorize(actor, policy.BookAppointment); err != nil {
		return nil, err
	}

	available, err := u.availableSlots(ctx, u.tx.Conn(ctx), u.clock.Now())
	if err != nil {
		return nil, err
	}

	return &dto.SlotListResponse{
		Slots: converter.SlotsToResponses(available),
		Total: len(available),
	}, nil
}

func (u *appointmentUsecase) Next(ctx context.Context, actor entity.Actor) (*dto.NextAppointmentResponse, error) {
	if err := policy.Authorize(actor, policy.ViewOwnAppointments); err != nil {
		return nil, err
	}

	pending, err := u.appointmentRepo.FindPending(ctx, u.tx.Conn(ctx), false)
	if err != nil {
		u.log.Warnf("Failed to load pending appointments: %+v", err)
		return nil, err
	}

	next := queue.Next(pending, queue.OwnerScope(actor))
	if next == nil {
		return &dto.NextAppointmentResponse{}, nil
	}
	return &dto.NextAppointmentResponse{Appointment: converter.AppointmentToResponse(next, u.clock.Location)}, nil
}

// Queue shows the whole waiting queue; the viewer's own entries are marked.
func (u *appointmentUsecase) Queue(ctx context.Context, actor entity.Actor) (*dto.QueueResponse, error) {
	if err := policy.Authorize(actor, policy.ViewOwnAppointments); err != nil {
		return nil, err
	}

	pending, err := u.appointmentRepo.FindPending(ctx, u.tx.Conn(ctx), false)
	if err != nil {
		u.log.Warnf("Failed to load pending appointments: %+v", err)
		return nil, err
	}

	entries := queue.Ordered(pending)
	return &dto.QueueResponse{
		Entries: converter.QueueToResponses(entries, &actor.UserID, u.clock.Location),
		Total:   len(entries),
	}, nil
}

// availableSlots loads the inputs of the slot calculator for the window
// starting today and runs it.
func (u *appointmentUsecase) availableSlots(ctx context.Context, db *gorm.DB, now time.Time) ([]slot.Slot, error) {
	from, to := slot.Window(now, u.clock.Location)

	hours, err := u.hoursRepo.FindActive(ctx, db)
	if err != nil {
		u.log.Warnf("Failed to load clinic hours: %+v", err)
		return nil, err
	}

	closures, err := u.closureRepo.FindBetween(ctx, db, from, to)
	if err != nil {
		u.log.Warnf("Failed to load closure days: %+v", err)
		return nil, err
	}

	taken, err := u.appointmentRepo.TakenTimes(ctx, db, from, to)
	if err != nil {
		u.log.Warnf("Failed to load booked slots: %+v", err)
		return nil, err
	}

	return slot.Available(now, u.clock.Location, hours, slot.ClosedFrom(closures), slot.TakenFrom(taken)), nil
}
