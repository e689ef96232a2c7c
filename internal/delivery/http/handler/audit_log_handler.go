package handler

import (
	"net/http"
	"strconv"

	"clinic-appointment-manager/internal/converter"
	"clinic-appointment-manager/internal/service"
	"clinic-appointment-manager/pkg/response"
)

type AuditLogHandler struct {
	auditService *service.AuditService
}

func NewAuditLogHandler(auditService *service.AuditService) *AuditLogHandler {
	return &AuditLogHandler{auditService: auditService}
}

func (h *AuditLogHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.auditService.Recent(r.Context(), limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", converter.AuditLogsToResponse(logs))
}
