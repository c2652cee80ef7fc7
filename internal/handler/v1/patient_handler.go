package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/service"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PatientHandler struct {
	patients *service.PatientService
	records  *service.CareRecordService
	log      *zap.Logger
}

func NewPatientHandler(patients *service.PatientService, records *service.CareRecordService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, records: records, log: log}
}

type createPatientRequest struct {
	FirstName     string                 `json:"first_name" binding:"required"`
	LastName      string                 `json:"last_name" binding:"required"`
	PreferredName *string                `json:"preferred_name"`
	Email         string                 `json:"email"`
	DateOfBirth   *time.Time             `json:"date_of_birth"`
	Location      *string                `json:"location"`
	Address       *string                `json:"address"`
	DementiaStage *patient.DementiaStage `json:"dementia_stage"`
	Relationship  string                 `json:"relationship"`

	EmergencyContact *struct {
		Name         *string `json:"name"`
		Relationship *string `json:"relationship"`
		Phone        *string `json:"phone"`
		Email        *string `json:"email"`
	} `json:"emergency_contact"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &patient.CreatePatientCommand{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PreferredName: req.PreferredName,
		Email:         req.Email,
		DateOfBirth:   req.DateOfBirth,
		Location:      req.Location,
		Address:       req.Address,
		DementiaStage: req.DementiaStage,
		Relationship:  req.Relationship,
	}
	if ec := req.EmergencyContact; ec != nil {
		cmd.EmergencyContactName = ec.Name
		cmd.EmergencyContactRelationship = ec.Relationship
		cmd.EmergencyContactPhone = ec.Phone
		cmd.EmergencyContactEmail = ec.Email
	}

	profile, err := h.patients.CreatePatient(c.Request.Context(), cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, profile)
}

type updatePatientRequest struct {
	FirstName     *string                `json:"first_name"`
	LastName      *string                `json:"last_name"`
	PreferredName *string                `json:"preferred_name"`
	DateOfBirth   *time.Time             `json:"date_of_birth"`
	PhotoURL      *string                `json:"photo_url"`
	Location      *string                `json:"location"`
	Address       *string                `json:"address"`
	Affirmation   *string                `json:"affirmation"`
	DiagnosisDate *time.Time             `json:"diagnosis_date"`
	DementiaStage *patient.DementiaStage `json:"dementia_stage"`

	EmergencyContact *struct {
		Name         *string `json:"name"`
		Relationship *string `json:"relationship"`
		Phone        *string `json:"phone"`
		Email        *string `json:"email"`
	} `json:"emergency_contact"`

	Preferences *struct {
		Language             *string `json:"language"`
		FontSize             *string `json:"font_size"`
		HighContrast         *bool   `json:"high_contrast"`
		AudioEnabled         *bool   `json:"audio_enabled"`
		NotificationsEnabled *bool   `json:"notifications_enabled"`
		Tone                 *string `json:"tone"`
	} `json:"preferences"`
}

func (h *PatientHandler) Update(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &patient.UpdatePatientCommand{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PreferredName: req.PreferredName,
		DateOfBirth:   req.DateOfBirth,
		PhotoURL:      req.PhotoURL,
		Location:      req.Location,
		Address:       req.Address,
		Affirmation:   req.Affirmation,
		DiagnosisDate: req.DiagnosisDate,
		DementiaStage: req.DementiaStage,
	}
	if ec := req.EmergencyContact; ec != nil {
		cmd.EmergencyContactName = ec.Name
		cmd.EmergencyContactRelationship = ec.Relationship
		cmd.EmergencyContactPhone = ec.Phone
		cmd.EmergencyContactEmail = ec.Email
	}
	if p := req.Preferences; p != nil {
		cmd.PreferencesLanguage = p.Language
		cmd.PreferencesFontSize = p.FontSize
		cmd.PreferencesHighContrast = p.HighContrast
		cmd.PreferencesAudioEnabled = p.AudioEnabled
		cmd.PreferencesNotificationsEnabled = p.NotificationsEnabled
		cmd.PreferencesTone = p.Tone
	}

	profile, err := h.patients.UpdatePatient(c.Request.Context(), patientID, cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, profile)
}

func (h *PatientHandler) CareRecord(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	rec, err := h.records.LoadCareRecord(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, rec)
}

// CaregiverPatients lists the care records of a caregiver's patients. A
// request without a session gets an empty list.
func (h *PatientHandler) CaregiverPatients(c *gin.Context) {
	caregiverID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	h.listForCaregiver(c, caregiverID)
}

func (h *PatientHandler) MyPatients(c *gin.Context) {
	sess, ok := auth.SessionFromContext(c.Request.Context())
	if !ok {
		respondOK(c, []any{})
		return
	}
	h.listForCaregiver(c, sess.PrincipalID)
}

func (h *PatientHandler) listForCaregiver(c *gin.Context, caregiverID uuid.UUID) {
	records, err := h.records.ListPatientsForCaregiver(c.Request.Context(), caregiverID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, records)
}
