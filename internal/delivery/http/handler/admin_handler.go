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

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// AdminHandler serves the admin dashboard, reports and staff roles.
type AdminHandler struct {
	reportUsecase usecase.ReportUsecase
	staffUsecase  usecase.StaffUsecase
	validator     *validator.CustomValidator
	redirects     Redirects
}

func NewAdminHandler(reportUsecase usecase.ReportUsecase, staffUsecase usecase.StaffUsecase, validator *validator.CustomValidator, redirects Redirects) *AdminHandler {
	return &AdminHandler{
		reportUsecase: reportUsecase,
		staffUsecase:  staffUsecase,
		validator:     validator,
		redirects:     redirects,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	dashboard, err := h.reportUsecase.AdminDashboard(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		default:
			response.InternalServerError(w, "Failed to load dashboard")
		}
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

// Report counts appointments by status
// @Summary Appointment report
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/report [get]
func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	q := r.URL.Query()

	report, err := h.reportUsecase.Report(r.Context(), a, q.Get("from"), q.Get("to"))
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		case errors.Is(err, usecase.ErrInvalidDate):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to build report")
		}
		return
	}

	response.Success(w, http.StatusOK, "Report generated successfully", report)
}

func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.staffUsecase.UpdateProfile(r.Context(), a, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		case errors.Is(err, usecase.ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, usecase.ErrInvalidRole):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}
