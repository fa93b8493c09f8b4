package handler

import (
	"errors"
	"net/http"

	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	redirects      Redirects
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, redirects Redirects) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		redirects:      redirects,
	}
}

// GetMyPatient returns the caller's patient record and balance
// @Summary My patient record
// @Tags Patient
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /me/patient [get]
func (h *PatientHandler) GetMyPatient(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}

	patient, err := h.patientUsecase.GetMyPatient(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to get patient record")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient record retrieved successfully", patient)
}
