package converter

import (
	"time"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/queue"
	"clinic-booking/internal/domain/slot"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Times are rendered in loc.
func AppointmentToResponse(appointment *entity.Appointment, loc *time.Location) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	scheduled := appointment.ScheduledAt.In(loc)
	response := &dto.AppointmentResponse{
		ID:          appointment.ID,
		Title:       appointment.Title,
		Description: appointment.Description,
		ScheduledAt: scheduled,
		Label:       slot.Label(scheduled),
		UserID:      appointment.UserID,
		Status:      string(appointment.Status),
		Priority:    string(appointment.Priority),
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}

	if appointment.Service != nil {
		response.Service = ServiceToResponse(appointment.Service)
	}
	if appointment.Ticket != nil {
		response.TicketNumber = appointment.Ticket.TicketNumber
	}
	if appointment.User != nil {
		response.PatientName = PatientLabel(appointment.User)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment, loc *time.Location) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i], loc)
	}
	return responses
}

func SlotsToResponses(slots []slot.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = dto.SlotResponse{Value: s.Value(), Label: s.Label}
	}
	return responses
}

// QueueToResponses renders ranked entries. When viewer is set, that user's
// entries are labelled "You" and flagged as theirs.
func QueueToResponses(entries []queue.Entry, viewer *uuid.UUID, loc *time.Location) []dto.QueueEntryResponse {
	responses := make([]dto.QueueEntryResponse, len(entries))
	for i, e := range entries {
		a := e.Appointment
		scheduled := a.ScheduledAt.In(loc)
		r := dto.QueueEntryResponse{
			Position:      e.Position,
			AppointmentID: a.ID,
			Label:         PatientLabel(a.User),
			Title:         a.Title,
			ScheduledAt:   scheduled,
			Priority:      string(a.Priority),
		}
		if viewer != nil && a.UserID == *viewer {
			r.Label = "You"
			r.IsMine = true
		}
		if a.Ticket != nil {
			r.TicketNumber = a.Ticket.TicketNumber
		}
		responses[i] = r
	}
	return responses
}
