package usecase

import (
	"context"
	"errors"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/policy"
	"clinic-booking/internal/domain/queue"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/infrastructure/messaging"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrQueueChanged    = errors.New("the queue changed while calling the next patient, please retry")
	ErrNotPending      = errors.New("only waiting appointments can change priority")
	ErrInvalidPriority = errors.New("invalid priority")
)

// QueueUsecase holds the agent actions on the waiting queue.
type QueueUsecase interface {
	Dashboard(ctx context.Context, actor entity.Actor) (*dto.AgentDashboardResponse, error)
	Queue(ctx context.Context, actor entity.Actor) (*dto.QueueResponse, error)
	// CallNext confirms the first appointment of the queue. A nil appointment
	// in the response means the queue is empty.
	CallNext(ctx context.Context, actor entity.Actor) (*dto.NextAppointmentResponse, error)
	Validate(ctx context.Context, actor entity.Actor, id int64) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, actor entity.Actor, id int64) (*dto.AppointmentResponse, error)
	SetPriority(ctx context.Context, actor entity.Actor, id int64, req *dto.SetPriorityRequest) (*dto.AppointmentResponse, error)
}

type queueUsecase struct {
	tx              database.Transactor
	log             *logrus.Logger
	clock           Clock
	appointmentRepo repository.AppointmentRepository
	ticketRepo      repository.QueueTicketRepository
	auditService    service.AuditService
	publisher       messaging.EventPublisher
}

func NewQueueUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	clock Clock,
	appointmentRepo repository.AppointmentRepository,
	ticketRepo repository.QueueTicketRepository,
	auditService service.AuditService,
	publisher messaging.EventPublisher,
) QueueUsecase {
	return &queueUsecase{
		tx:              tx,
		log:             log,
		clock:           clock,
		appointmentRepo: appointmentRepo,
		ticketRepo:      ticketRepo,
		auditService:    auditService,
		publisher:       publisher,
	}
}

func (u *queueUsecase) Dashboard(ctx context.Context, actor entity.Actor) (*dto.AgentDashboardResponse, error) {
	if err := policy.Authorize(actor, policy.ManageQueue); err != nil {
		return nil, err
	}

	db := u.tx.Conn(ctx)
	from := u.clock.Today()
	to := from.AddDate(0, 0, 1).Add(-1)

	today, err := u.appointmentRepo.FindByFilter(ctx, db, entity.AppointmentFilter{
		From:    &from,
		To:      &to,
		Exclude: []entity.AppointmentStatus{entity.AppointmentStatusCancelled},
	})
	if err != nil {
		u.log.Warnf("Failed to load today's appointments: %+v", err)
		return nil, err
	}

	pending, err := u.appointmentRepo.FindPending(ctx, db, false)
	if err != nil {
		u.log.Warnf("Failed to load pending appointments: %+v", err)
		return nil, err
	}

	resp := &dto.AgentDashboardResponse{
		Date:         from.Format(entity.DateLayout),
		Appointments: converter.AppointmentsToResponses(today, u.clock.Location),
	}
	if next := queue.Next(pending, nil); next != nil {
		resp.Next = converter.AppointmentToResponse(next, u.clock.Location)
	}
	return resp, nil
}

func (u *queueUsecase) Queue(ctx context.Context, actor entity.Actor) (*dto.QueueResponse, error) {
	if err := policy.Authorize(actor, policy.ManageQueue); err != nil {
		return nil, err
	}

	pending, err := u.appointmentRepo.FindPending(ctx, u.tx.Conn(ctx), false)
	if err != nil {
		u.log.Warnf("Failed to load pending appointments: %+v", err)
		return nil, err
	}

	entries := queue.Ordered(pending)
	return &dto.QueueResponse{
		Entries: converter.QueueToResponses(entries, nil, u.clock.Location),
		Total:   len(entries),
	}, nil
}

func (u *queueUsecase) CallNext(ctx context.Context, actor entity.Actor) (*dto.NextAppointmentResponse, error) {
	if err := policy.Authorize(actor, policy.ManageQueue); err != nil {
		return nil, err
	}

	var calledID int64
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		// Pending rows stay locked until commit, so a concurrent call waits
		// and then ranks without the row confirmed here.
		pending, err := u.appointmentRepo.FindPending(ctx, tx, true)
		if err != nil {
			u.log.Warnf("Failed to lock pending appointments: %+v", err)
			return err
		}

		next := queue.Next(pending, nil)
		if next == nil {
			return nil
		}

		rows, err := u.appointmentRepo.UpdateStatus(ctx, tx, next.ID, entity.AppointmentStatusConfirmed, entity.AppointmentStatusPending)
		if err != nil {
			u.log.Warnf("Failed to confirm appointment %d: %+v", next.ID, err)
			return err
		}
		if rows == 0 {
			return ErrQueueChanged
		}
		calledID = next.ID

		return u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentConfirm, "appointment", idString(next.ID),
			map[string]string{"status": string(entity.AppointmentStatusPending)},
			map[string]string{"status": string(entity.AppointmentStatusConfirmed)},
		)
	})
	if err != nil {
		return nil, err
	}
	if calledID == 0 {
		return &dto.NextAppointmentResponse{}, nil
	}

	called, err := u.load(ctx, calledID)
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment %d called by %s", called.ID, actor.UserID)
	publishEvent(ctx, u.publisher, u.log, messaging.EventAppointmentConfirmed, called, u.clock.Now())

	return &dto.NextAppointmentResponse{Appointment: converter.AppointmentToResponse(called, u.clock.Location)}, nil
}

// Validate marks the patient as seen, whatever the current status.
func (u *queueUsecase) Validate(ctx context.Context, actor entity.Actor, id int64) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, actor, id, entity.AppointmentStatusDone, entity.AuditActionAppointmentDone, messaging.EventAppointmentDone)
}

// Cancel releases the slot, whatever the current status.
func (u *queueUsecase) Cancel(ctx context.Context, actor entity.Actor, id int64) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, actor, id, entity.AppointmentStatusCancelled, entity.AuditActionAppointmentCancel, messaging.EventAppointmentCancelled)
}

func (u *queueUsecase) transition(ctx context.Context, actor entity.Actor, id int64, status entity.AppointmentStatus, action, eventType string) (*dto.AppointmentResponse, error) {
	if err := policy.Authorize(actor, policy.ManageQueue); err != nil {
		return nil, err
	}

	var appointment *entity.Appointment
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		found, err := u.appointmentRepo.FindByID(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %d: %+v", id, err)
			return err
		}
		if found == nil {
			return ErrAppointmentNotFound
		}

		previous := found.Status
		rows, err := u.appointmentRepo.UpdateStatus(ctx, tx, id, status)
		if err != nil {
			u.log.Warnf("Failed to update appointment %d: %+v", id, err)
			return err
		}
		if rows == 0 {
			return ErrAppointmentNotFound
		}
		found.Status = status
		appointment = found

		return u.auditService.LogUpdate(ctx, tx, &actor.UserID, action, "appointment", idString(id),
			map[string]string{"status": string(previous)},
			map[string]string{"status": string(status)},
		)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment %d set to %s by %s", id, status, actor.UserID)
	publishEvent(ctx, u.publisher, u.log, eventType, appointment, u.clock.Now())

	return converter.AppointmentToResponse(appointment, u.clock.Location), nil
}

func (u *queueUsecase) SetPriority(ctx context.Context, actor entity.Actor, id int64, req *dto.SetPriorityRequest) (*dto.AppointmentResponse, error) {
	if err := policy.Authorize(actor, policy.ManageQueue); err != nil {
		return nil, err
	}

	priority := entity.Priority(req.Priority)
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	var appointment *entity.Appointment
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		found, err := u.appointmentRepo.FindByID(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find appointment %d: %+v", id, err)
			return err
		}
		if found == nil {
			return ErrAppointmentNotFound
		}
		if !found.IsPending() {
			return ErrNotPending
		}

		previous := found.Priority
		rows, err := u.appointmentRepo.UpdatePriority(ctx, tx, id, priority)
		if err != nil {
			u.log.Warnf("Failed to update priority of appointment %d: %+v", id, err)
			return err
		}
		if rows == 0 {
			return ErrNotPending
		}

		if err := u.ticketRepo.UpdatePriority(ctx, tx, id, priority); err != nil {
			u.log.Warnf("Failed to update ticket priority of appointment %d: %+v", id, err)
			return err
		}

		found.Priority = priority
		if found.Ticket != nil {
			found.Ticket.Priority = priority
		}
		appointment = found

		return u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentPriority, "appointment", idString(id),
			map[string]string{"priority": string(previous)},
			map[string]string{"priority": string(priority)},
		)
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, u.publisher, u.log, messaging.EventAppointmentPriority, appointment, u.clock.Now())

	return converter.AppointmentToResponse(appointment, u.clock.Location), nil
}

func (u *queueUsecase) load(ctx context.Context, id int64) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}
