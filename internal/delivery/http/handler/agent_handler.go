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

// AgentHandler serves the front desk: the queue and appointment transitions.
type AgentHandler struct {
	queueUsecase usecase.QueueUsecase
	validator    *validator.CustomValidator
	redirects    Redirects
}

func NewAgentHandler(queueUsecase usecase.QueueUsecase, validator *validator.CustomValidator, redirects Redirects) *AgentHandler {
	return &AgentHandler{
		queueUsecase: queueUsecase,
		validator:    validator,
		redirects:    redirects,
	}
}

func (h *AgentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	dashboard, err := h.queueUsecase.Dashboard(r.Context(), a)
	if err != nil {
		h.fail(w, r, err, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *AgentHandler) Queue(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	queue, err := h.queueUsecase.Queue(r.Context(), a)
	if err != nil {
		h.fail(w, r, err, "Failed to get queue")
		return
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", queue)
}

// CallNext confirms the first appointment of the queue
// @Summary Call next patient
// @Tags Agent
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /agent/call-next [post]
func (h *AgentHandler) CallNext(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	next, err := h.queueUsecase.CallNext(r.Context(), a)
	if err != nil {
		h.fail(w, r, err, "Failed to call next patient")
		return
	}
	if next.Appointment == nil {
		response.Success(w, http.StatusOK, "The queue is empty", next)
		return
	}

	response.Success(w, http.StatusOK, "Patient called", next)
}

func (h *AgentHandler) Validate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.queueUsecase.Validate(r.Context(), a, id)
	if err != nil {
		h.fail(w, r, err, "Failed to validate appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment marked as done", appointment)
}

func (h *AgentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.queueUsecase.Cancel(r.Context(), a, id)
	if err != nil {
		h.fail(w, r, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled", appointment)
}

func (h *AgentHandler) SetPriority(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.SetPriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.queueUsecase.SetPriority(r.Context(), a, id, &req)
	if err != nil {
		h.fail(w, r, err, "Failed to change priority")
		return
	}

	response.Success(w, http.StatusOK, "Priority updated", appointment)
}

func (h *AgentHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, policy.ErrForbidden):
		response.Redirect(w, r, h.redirects.Forbidden)
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrNotPending), errors.Is(err, usecase.ErrInvalidPriority):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrQueueChanged):
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, message)
	}
}
