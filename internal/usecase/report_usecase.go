package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/policy"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardHorizon  = 7 * 24 * time.Hour
	dashboardUpcoming = 10
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

type ReportUsecase interface {
	// Report counts appointments scheduled between from and to, both given as
	// YYYY-MM-DD and inclusive. Empty bounds are open.
	Report(ctx context.Context, actor entity.Actor, from, to string) (*dto.ReportResponse, error)
	AdminDashboard(ctx context.Context, actor entity.Actor) (*dto.AdminDashboardResponse, error)
}

type reportUsecase struct {
	tx              database.Transactor
	log             *logrus.Logger
	clock           Clock
	appointmentRepo repository.AppointmentRepository
}

func NewReportUsecase(tx database.Transactor, log *logrus.Logger, clock Clock, appointmentRepo repository.AppointmentRepository) ReportUsecase {
	return &reportUsecase{
		tx:              tx,
		log:             log,
		clock:           clock,
		appointmentRepo: appointmentRepo,
	}
}

func (u *reportUsecase) Report(ctx context.Context, actor entity.Actor, from, to string) (*dto.ReportResponse, error) {
	if err := policy.Authorize(actor, policy.ViewReports); err != nil {
		return nil, err
	}

	start, err := u.parseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := u.parseDay(to)
	if err != nil {
		return nil, err
	}
	if end != nil {
		last := end.AddDate(0, 0, 1).Add(-1)
		end = &last
	}

	report, err := u.report(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if from != "" {
		report.From = &from
	}
	if to != "" {
		report.To = &to
	}
	return report, nil
}

func (u *reportUsecase) AdminDashboard(ctx context.Context, actor entity.Actor) (*dto.AdminDashboardResponse, error) {
	if err := policy.Authorize(actor, policy.ViewReports); err != nil {
		return nil, err
	}

	now := u.clock.Now()
	until := now.Add(dashboardHorizon)

	var (
		report   *dto.ReportResponse
		upcoming []entity.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = u.report(gctx, nil, nil)
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = u.appointmentRepo.FindByFilter(gctx, u.tx.Conn(gctx), entity.AppointmentFilter{
			From:  &now,
			To:    &until,
			Limit: dashboardUpcoming,
		})
		if err != nil {
			u.log.Warnf("Failed to load upcoming appointments: %+v", err)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.AdminDashboardResponse{
		Report:   *report,
		Upcoming: converter.AppointmentsToResponses(upcoming, u.clock.Location),
	}, nil
}

func (u *reportUsecase) report(ctx context.Context, from, to *time.Time) (*dto.ReportResponse, error) {
	rows, err := u.appointmentRepo.CountGrouped(ctx, u.tx.Conn(ctx), from, to)
	if err != nil {
		u.log.Warnf("Failed to count appointments: %+v", err)
		return nil, err
	}

	report := &dto.ReportResponse{ByStatus: make(map[string]int64, len(entity.AppointmentStatuses))}
	for _, status := range entity.AppointmentStatuses {
		report.ByStatus[string(status)] = 0
	}
	for _, row := range rows {
		report.Total += row.Count
		report.ByStatus[string(row.Status)] += row.Count
		if row.Priority == entity.PriorityUrgent {
			report.Urgent += row.Count
		}
	}
	return report, nil
}

func (u *reportUsecase) parseDay(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(entity.DateLayout, value, u.clock.Location)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &day, nil
}
