package v1

import (
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminHandler struct {
	relationships *service.RelationshipService
	audit         *service.AuditService
	log           *zap.Logger
}

func NewAdminHandler(relationships *service.RelationshipService, audit *service.AuditService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{relationships: relationships, audit: audit, log: log}
}

func (h *AdminHandler) ListCaregivers(c *gin.Context) {
	out, err := h.relationships.ListCaregivers(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, out)
}

func (h *AdminHandler) ListGrantableUsers(c *gin.Context) {
	out, err := h.relationships.ListGrantableUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, out)
}

func (h *AdminHandler) GrantCaregiverRole(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.relationships.GrantCaregiverRole(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "caregiver role granted")
}

func (h *AdminHandler) RevokeCaregiverRole(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok || !requireConfirm(c) {
		return
	}
	if err := h.relationships.RevokeCaregiverRole(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "caregiver role revoked")
}

func (h *AdminHandler) ListPatients(c *gin.Context) {
	out, err := h.relationships.ListAllPatientsWithAssignment(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, out)
}

// reassignRequest with a missing or null caregiver_id unassigns the patient.
type reassignRequest struct {
	CaregiverID *uuid.UUID `json:"caregiver_id"`
}

func (h *AdminHandler) ReassignPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req reassignRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.relationships.ReassignPatient(c.Request.Context(), patientID, req.CaregiverID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if link == nil {
		respondMessage(c, "patient has no caregiver")
		return
	}
	respondOK(c, link)
}

func (h *AdminHandler) DeletePatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok || !requireConfirm(c) {
		return
	}
	if err := h.relationships.DeletePatient(c.Request.Context(), patientID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "patient deleted")
}

func (h *AdminHandler) ListAudit(c *gin.Context) {
	out, err := h.audit.ListRecent(c.Request.Context(), parseQueryInt(c, "limit", service.DefaultAuditListLimit))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, out)
}
