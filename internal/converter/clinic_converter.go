package converter

import (
	"time"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

func ClinicHoursToResponse(h *entity.ClinicHours) dto.ClinicHoursResponse {
	return dto.ClinicHoursResponse{
		ID:          h.ID,
		Weekday:     h.Weekday,
		WeekdayName: entity.WeekdayName(h.Weekday),
		OpensAt:     entity.FormatClock(h.Open()),
		ClosesAt:    entity.FormatClock(h.Close()),
		Active:      h.Active,
	}
}

func ClinicHoursToResponses(hours []entity.ClinicHours) []dto.ClinicHoursResponse {
	responses := make([]dto.ClinicHoursResponse, len(hours))
	for i := range hours {
		responses[i] = ClinicHoursToResponse(&hours[i])
	}
	return responses
}

func ClosureDayToResponse(day *entity.ClosureDay) dto.ClosureDayResponse {
	return dto.ClosureDayResponse{
		ID:     day.ID,
		Date:   time.Time(day.Date).Format(entity.DateLayout),
		Reason: day.Reason,
	}
}

func ClosureDaysToResponses(days []entity.ClosureDay) []dto.ClosureDayResponse {
	responses := make([]dto.ClosureDayResponse, len(days))
	for i := range days {
		responses[i] = ClosureDayToResponse(&days[i])
	}
	return responses
}

func ServiceToResponse(service *entity.Service) *dto.ServiceResponse {
	if service == nil {
		return nil
	}
	return &dto.ServiceResponse{
		ID:              service.ID,
		Name:            service.Name,
		DurationMinutes: service.DurationMinutes,
		Description:     service.Description,
		ImageURL:        service.ImageURL,
		CreatedAt:       service.CreatedAt,
	}
}

func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, len(services))
	for i := range services {
		responses[i] = *ServiceToResponse(&services[i])
	}
	return responses
}
