package handler

import (
	"errors"
	"net/http"

	"clinic-booking/internal/domain/policy"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
	redirects       Redirects
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase, redirects Redirects) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
		redirects:       redirects,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	auditLogID, err := pathID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid audit log ID", nil)
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), a, auditLogID)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		case errors.Is(err, usecase.ErrAuditLogNotFound):
			response.NotFound(w, "Audit log not found")
		default:
			response.InternalServerError(w, "Failed to get audit log")
		}
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.redirects)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	auditLogs, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), a, page, limit)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrForbidden):
			response.Redirect(w, r, h.redirects.Forbidden)
		default:
			response.InternalServerError(w, "Failed to get audit logs")
		}
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs.Logs,
		response.NewMeta(auditLogs.Page, auditLogs.Limit, auditLogs.Total))
}
