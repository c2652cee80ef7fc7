package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reassignment outcomes, also used as metric labels.
const (
	ReassignUpdated    = "update"
	ReassignInserted   = "insert"
	ReassignUnassigned = "unassign"
	ReassignNoop       = "noop"
)

// RelationshipService owns caregiver capability and patient assignment.
// Every method requires admin capability.
type RelationshipService struct {
	principals PrincipalRepository
	patients   patient.Repository
	links      caregiver.Repository
	resolver   *RoleResolver
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewRelationshipService(
	principals PrincipalRepository,
	patients patient.Repository,
	links caregiver.Repository,
	resolver *RoleResolver,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *RelationshipService {
	return &RelationshipService{
		principals: principals,
		patients:   patients,
		links:      links,
		resolver:   resolver,
		auditSvc:   auditSvc,
		metrics:    m,
		log:        log,
	}
}

func (s *RelationshipService) ListCaregivers(ctx context.Context) ([]*caregiver.Summary, error) {
	if _, err := s.resolver.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	out, err := s.links.ListCaregiverSummaries(ctx)
	if err != nil {
		return nil, storeErr("list caregivers", err)
	}
	return out, nil
}

// ListGrantableUsers returns principals without the caregiver role, ordered
// by email. search filters by case-insensitive substring of name or email.
func (s *RelationshipService) ListGrantableUsers(ctx context.Context, search string) ([]*domain.Principal, error) {
	if _, err := s.resolver.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	all, err := s.principals.ListExcludingRole(ctx, domain.RoleCaregiver)
	if err != nil {
		return nil, storeErr("list grantable users", err)
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return all, nil
	}

	out := make([]*domain.Principal, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.FullName()), needle) ||
			strings.Contains(strings.ToLower(p.Email), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *RelationshipService) GrantCaregiverRole(ctx context.Context, principalID uuid.UUID) error {
	return s.setRole(ctx, principalID, domain.RoleCaregiver, domain.ActionGrantCaregiver)
}

// RevokeCaregiverRole demotes the principal to patient. Link rows are left
// untouched; the demoted principal simply stops passing caregiver checks.
func (s *RelationshipService) RevokeCaregiverRole(ctx context.Context, principalID uuid.UUID) error {
	return s.setRole(ctx, principalID, domain.RolePatient, domain.ActionRevokeCaregiver)
}

func (s *RelationshipService) setRole(ctx context.Context, principalID uuid.UUID, role domain.Role, action domain.AuditAction) error {
	if _, err := s.resolver.RequireAdmin(ctx); err != nil {
		return err
	}

	p, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		return storeErr("get principal", err, domain.ErrPrincipalNotFound)
	}

	if err := s.principals.UpdateRole(ctx, principalID, role); err != nil {
		return storeErr("update role", err, domain.ErrPrincipalNotFound)
	}

	s.metrics.RoleChanged(string(role))
	s.auditSvc.Record(ctx, action, map[string]any{
		"principal_id":  principalID.String(),
		"email":         p.Email,
		"previous_role": string(p.Role),
		"role":          string(role),
	})

	s.log.Info("principal role changed",
		zap.String("principal_id", principalID.String()),
		zap.String("from", string(p.Role)),
		zap.String("to", string(role)),
	)
	return nil
}

func (s *RelationshipService) ListAllPatientsWithAssignment(ctx context.Context) ([]*patient.Assignment, error) {
	if _, err := s.resolver.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	out, err := s.patients.ListWithAssignment(ctx)
	if err != nil {
		return nil, storeErr("list patients with assignment", err)
	}
	return out, nil
}

// ReassignPatient points the patient's authoritative link at newCaregiverID,
// preserving the row and its relationship label. With no link, a new primary
// link is inserted. A nil target removes the authoritative link. The
// returned link is nil when the patient ends up unassigned.
func (s *RelationshipService) ReassignPatient(ctx context.Context, patientID uuid.UUID, newCaregiverID *uuid.UUID) (*caregiver.Link, error) {
	if _, err := s.resolver.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}

	if newCaregiverID != nil {
		if err := s.validateCaregiver(ctx, *newCaregiverID); err != nil {
			return nil, err
		}
	}

	current, err := s.links.FindAuthoritative(ctx, patientID)
	if err != nil && !errors.Is(err, caregiver.ErrLinkNotFound) {
		return nil, storeErr("find caregiver link", err)
	}
	hasLink := err == nil

	var (
		result *caregiver.Link
		kind   string
	)

	switch {
	case hasLink && newCaregiverID != nil:
		if err := s.links.UpdateCaregiver(ctx, current.ID, *newCaregiverID); err != nil {
			return nil, storeErr("update caregiver link", err)
		}
		previous := current.CaregiverID
		current.CaregiverID = *newCaregiverID
		current.Caregiver = nil
		result, kind = current, ReassignUpdated
		s.auditSvc.Record(ctx, domain.ActionReassignPatient, map[string]any{
			"patient_id":         patientID.String(),
			"link_id":            current.ID.String(),
			"previous_caregiver": previous.String(),
			"caregiver_id":       newCaregiverID.String(),
		})

	case !hasLink && newCaregiverID != nil:
		link := &caregiver.Link{
			CaregiverID: *newCaregiverID,
			PatientID:   patientID,
			IsPrimary:   true,
		}
		if err := s.links.Create(ctx, link); err != nil {
			return nil, storeErr("create caregiver link", err)
		}
		result, kind = link, ReassignInserted
		s.auditSvc.Record(ctx, domain.ActionReassignPatient, map[string]any{
			"patient_id":   patientID.String(),
			"link_id":      link.ID.String(),
			"caregiver_id": newCaregiverID.String(),
		})

	case hasLink:
		if err := s.links.Delete(ctx, current.ID); err != nil {
			return nil, storeErr("delete caregiver link", err)
		}
		kind = ReassignUnassigned
		s.auditSvc.Record(ctx, domain.ActionUnassignPatient, map[string]any{
			"patient_id":         patientID.String(),
			"link_id":            current.ID.String(),
			"previous_caregiver": current.CaregiverID.String(),
		})

	default:
		kind = ReassignNoop
	}

	s.metrics.Reassigned(kind)
	s.log.Info("patient reassigned",
		zap.String("patient_id", patientID.String()),
		zap.String("kind", kind),
	)
	return result, nil
}

func (s *RelationshipService) validateCaregiver(ctx context.Context, id uuid.UUID) error {
	p, err := s.principals.GetByID(ctx, id)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		return &ValidationError{Fields: []string{"caregiver_id does not reference an existing principal"}}
	}
	if err != nil {
		return storeErr("get caregiver", err)
	}
	if p.Role != domain.RoleCaregiver {
		return &ValidationError{Fields: []string{"caregiver_id must reference a principal with the caregiver role"}}
	}
	return nil
}

// DeletePatient removes the patient's principal. The store cascades the
// delete to the patient row, its links and every dependent collection.
func (s *RelationshipService) DeletePatient(ctx context.Context, patientID uuid.UUID) error {
	if _, err := s.resolver.RequireAdmin(ctx); err != nil {
		return err
	}

	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return storeErr("get patient", err, patient.ErrPatientNotFound)
	}

	if err := s.principals.Delete(ctx, patientID); err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return patient.ErrPatientNotFound
		}
		return storeErr("delete patient", err)
	}

	profile := patient.Normalize(p)
	s.auditSvc.Record(ctx, domain.ActionDeletePatient, map[string]any{
		"patient_id": patientID.String(),
		"name":       profile.FullName(),
	})

	s.log.Info("patient deleted", zap.String("patient_id", patientID.String()))
	return nil
}
