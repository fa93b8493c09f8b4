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

// ClinicHandler manages opening hours, closure days and services. Listing
// services is public.
type ClinicHandler struct {
	clinicUsecase usecase.ClinicUsecase
	validator     *validator.CustomValidator
	redirects     Redirects
}

func NewClinicHandler(clinicUsecase usecase.ClinicUsecase, validator *validator.CustomValidator, redirects Redirects) *ClinicHandler {
	return &ClinicHandler{
		clinicUsecase: clinicUsecase,
		validator:     validator,
		redirects:     redirects,
	}
}

// Clinic hours

func (h *ClinicHandler) ListHours(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	hours, err := h.clinicUsecase.ListHours(r.Context(), a)
	if err != nil {
		h.fail(w, r, err, "Failed to get clinic hours")
		return
	}

	response.Success(w, http.StatusOK, "Clinic hours retrieved successfully", hours)
}

func (h *ClinicHandler) CreateHours(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	var req dto.ClinicHoursRequest
	if !h.decode(w, r, &req) {
		return
	}

	hours, err := h.clinicUsecase.CreateHours(r.Context(), a, &req)
	if err != nil {
		h.fail(w, r, err, "Failed to create clinic hours")
		return
	}

	response.Success(w, http.StatusCreated, "Clinic hours created successfully", hours)
}

func (h *ClinicHandler) UpdateHours(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid clinic hours ID")
		return
	}

	var req dto.ClinicHoursRequest
	if !h.decode(w, r, &req) {
		return
	}

	hours, err := h.clinicUsecase.UpdateHours(r.Context(), a, id, &req)
	if err != nil {
		h.fail(w, r, err, "Failed to update clinic hours")
		return
	}

	response.Success(w, http.StatusOK, "Clinic hours updated successfully", hours)
}

func (h *ClinicHandler) DeleteHours(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid clinic hours ID")
		return
	}

	if err := h.clinicUsecase.DeleteHours(r.Context(), a, id); err != nil {
		h.fail(w, r, err, "Failed to delete clinic hours")
		return
	}

	response.Success(w, http.StatusOK, "Clinic hours deleted successfully", nil)
}

// Closure days

func (h *ClinicHandler) ListClosures(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	days, err := h.clinicUsecase.ListClosures(r.Context(), a)
	if err != nil {
		h.fail(w, r, err, "Failed to get closure days")
		return
	}

	response.Success(w, http.StatusOK, "Closure days retrieved successfully", days)
}

func (h *ClinicHandler) CreateClosure(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	var req dto.ClosureDayRequest
	if !h.decode(w, r, &req) {
		return
	}

	day, err := h.clinicUsecase.CreateClosure(r.Context(), a, &req)
	if err != nil {
		h.fail(w, r, err, "Failed to create closure day")
		return
	}

	response.Success(w, http.StatusCreated, "Closure day created successfully", day)
}

func (h *ClinicHandler) DeleteClosure(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid closure day ID")
		return
	}

	if err := h.clinicUsecase.DeleteClosure(r.Context(), a, id); err != nil {
		h.fail(w, r, err, "Failed to delete closure day")
		return
	}

	response.Success(w, http.StatusOK, "Closure day deleted successfully", nil)
}

// Services

// ListServices is the public service listing. Without a limit it returns the
// landing page selection.
// @Summary List services
// @Tags Services
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /services [get]
func (h *ClinicHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	if limit == 0 {
		limit = usecase.LandingServices
	}

	services, err := h.clinicUsecase.ListServices(r.Context(), page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get services")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Services retrieved successfully", services.Services,
		response.NewMeta(services.Page, services.Limit, services.Total))
}

func (h *ClinicHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid service ID")
		return
	}

	svc, err := h.clinicUsecase.GetService(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get service")
		return
	}

	response.Success(w, http.StatusOK, "Service retrieved successfully", svc)
}

func (h *ClinicHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	var req dto.ServiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	svc, err := h.clinicUsecase.CreateService(r.Context(), a, &req)
	if err != nil {
		h.fail(w, r, err, "Failed to create service")
		return
	}

	response.Success(w, http.StatusCreated, "Service created successfully", svc)
}

func (h *ClinicHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid service ID")
		return
	}

	var req dto.ServiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	svc, err := h.clinicUsecase.UpdateService(r.Context(), a, id, &req)
	if err != nil {
		h.fail(w, r, err, "Failed to update service")
		return
	}

	response.Success(w, http.StatusOK, "Service updated successfully", svc)
}

func (h *ClinicHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "Invalid service ID")
		return
	}

	if err := h.clinicUsecase.DeleteService(r.Context(), a, id); err != nil {
		h.fail(w, r, err, "Failed to delete service")
		return
	}

	response.Success(w, http.StatusOK, "Service deleted successfully", nil)
}

func (h *ClinicHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}

func (h *ClinicHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, policy.ErrForbidden):
		response.Redirect(w, r, h.redirects.Forbidden)
	case errors.Is(err, usecase.ErrClinicHoursNotFound):
		response.NotFound(w, "Clinic hours not found")
	case errors.Is(err, usecase.ErrClosureDayNotFound):
		response.NotFound(w, "Closure day not found")
	case errors.Is(err, usecase.ErrServiceNotFound):
		response.NotFound(w, "Service not found")
	case errors.Is(err, usecase.ErrInvalidHours), errors.Is(err, usecase.ErrInvalidDate):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrClosureDayExists):
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, message)
	}
}
