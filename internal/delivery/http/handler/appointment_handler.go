package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/policy"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"
)

// AppointmentHandler serves the patient side: booking, slots and the queue.
type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
	redirects          Redirects
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator, redirects Redirects) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
		redirects:          redirects,
	}
}

// List returns the caller's appointments, or every appointment for admins
// @Summary List appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /appointments [get]
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	list, err := h.appointmentUsecase.List(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		default:
			response.InternalServerError(w, "Failed to get appointments")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", list)
}

// Create books one of the offered slots
// @Summary Book an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Appointment Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), a, &req)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		case errors.Is(err, usecase.ErrSlotRequired), errors.Is(err, usecase.ErrInvalidSlot), errors.Is(err, usecase.ErrSlotUnavailable):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrServiceNotFound):
			response.NotFound(w, "Service not found")
		case errors.Is(err, usecase.ErrSlotTaken), errors.Is(err, usecase.ErrTicketConflict):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

// Slots lists the bookable slots of the coming weeks
// @Summary Available slots
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /appointments/slots [get]
func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	slots, err := h.appointmentUsecase.Slots(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		default:
			response.InternalServerError(w, "Failed to compute slots")
		}
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

// Next returns the caller's first waiting appointment
// @Summary Next appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /appointments/next [get]
func (h *AppointmentHandler) Next(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	next, err := h.appointmentUsecase.Next(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		default:
			response.InternalServerError(w, "Failed to get next appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Next appointment retrieved successfully", next)
}

// Queue shows every waiting appointment with the caller's own marked "You"
// @Summary Waiting queue
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /queue [get]
func (h *AppointmentHandler) Queue(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	queue, err := h.appointmentUsecase.Queue(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		default:
			response.InternalServerError(w, "Failed to get queue")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", queue)
}
