package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PatientService struct {
	principals PrincipalRepository
	patients   patient.Repository
	links      caregiver.Repository
	resolver   *RoleResolver
	access     patientAccess
	auditSvc   *AuditService
	log        *zap.Logger
}

func NewPatientService(
	principals PrincipalRepository,
	patients patient.Repository,
	links caregiver.Repository,
	resolver *RoleResolver,
	auditSvc *AuditService,
	log *zap.Logger,
) *PatientService {
	return &PatientService{
		principals: principals,
		patients:   patients,
		links:      links,
		resolver:   resolver,
		access:     patientAccess{resolver: resolver, links: links},
		auditSvc:   auditSvc,
		log:        log,
	}
}

// CreatePatient registers a patient and links it to the calling caregiver.
// The three writes are not transactional: a failure after the first leaves
// a partially created patient behind.
func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand) (*patient.Profile, error) {
	id, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !id.IsCaregiver() && !id.Admin {
		return nil, ErrForbidden
	}

	if err := validateCreateCommand(cmd); err != nil {
		return nil, err
	}
	if cmd.Email != "" && s.resolver.IsAllowListed(cmd.Email) {
		return nil, ErrEmailReserved
	}

	principal := &domain.Principal{
		Email:     normalizeEmail(cmd.Email),
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Role:      domain.RolePatient,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return nil, storeErr("create patient principal", err, domain.ErrEmailTaken)
	}

	row := &patient.Patient{
		ID:                           principal.ID,
		FirstName:                    &principal.FirstName,
		LastName:                     &principal.LastName,
		PreferredName:                trimmed(cmd.PreferredName),
		DateOfBirth:                  cmd.DateOfBirth,
		Location:                     trimmed(cmd.Location),
		Address:                      trimmed(cmd.Address),
		EmergencyContactName:         trimmed(cmd.EmergencyContactName),
		EmergencyContactRelationship: trimmed(cmd.EmergencyContactRelationship),
		EmergencyContactPhone:        trimmed(cmd.EmergencyContactPhone),
		EmergencyContactEmail:        trimmed(cmd.EmergencyContactEmail),
	}
	if cmd.DementiaStage != nil {
		stage := string(*cmd.DementiaStage)
		row.DementiaStage = &stage
	}
	if err := s.patients.Create(ctx, row); err != nil {
		s.log.Error("patient principal created without patient row",
			zap.String("principal_id", principal.ID.String()),
			zap.Error(err),
		)
		return nil, storeErr("create patient", err)
	}

	relationship := strings.TrimSpace(cmd.Relationship)
	if relationship == "" {
		relationship = caregiver.DefaultRelationship
	}
	link := &caregiver.Link{
		CaregiverID:  id.PrincipalID,
		PatientID:    row.ID,
		Relationship: &relationship,
		IsPrimary:    true,
	}
	if err := s.links.Create(ctx, link); err != nil {
		s.log.Error("patient created without caregiver link",
			zap.String("patient_id", row.ID.String()),
			zap.Error(err),
		)
		return nil, storeErr("create caregiver link", err)
	}

	s.auditSvc.Record(ctx, domain.ActionCreatePatient, map[string]any{
		"patient_id":   row.ID.String(),
		"caregiver_id": id.PrincipalID.String(),
	})
	s.log.Info("patient created",
		zap.String("patient_id", row.ID.String()),
		zap.String("created_by", id.PrincipalID.String()),
	)

	return patient.Normalize(row), nil
}

// UpdatePatient applies a partial update and returns the normalized profile.
func (s *PatientService) UpdatePatient(ctx context.Context, patientID uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Profile, error) {
	if _, err := s.access.authorize(ctx, patientID); err != nil {
		return nil, err
	}
	if err := validateUpdateCommand(cmd); err != nil {
		return nil, err
	}

	row, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}

	cmd.Apply(row)
	if err := s.patients.Update(ctx, row); err != nil {
		return nil, storeErr("update patient", err, patient.ErrPatientNotFound)
	}

	return patient.Normalize(row), nil
}

func validateCreateCommand(cmd *patient.CreatePatientCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	if cmd.DementiaStage != nil && !cmd.DementiaStage.IsValid() {
		errs = append(errs, patient.ErrInvalidDementiaStage.Error())
	}
	if e := strings.TrimSpace(cmd.Email); e != "" && !strings.Contains(e, "@") {
		errs = append(errs, "email is invalid")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validateUpdateCommand(cmd *patient.UpdatePatientCommand) error {
	var errs []string

	if cmd.FirstName != nil && strings.TrimSpace(*cmd.FirstName) == "" {
		errs = append(errs, "first_name cannot be blank")
	}
	if cmd.LastName != nil && strings.TrimSpace(*cmd.LastName) == "" {
		errs = append(errs, "last_name cannot be blank")
	}
	if cmd.DementiaStage != nil && !cmd.DementiaStage.IsValid() {
		errs = append(errs, patient.ErrInvalidDementiaStage.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
