package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("selecting patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	res := r.db.WithContext(ctx).
		Model(p).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("updating patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

// ListWithAssignment runs three queries: patients, their principals, and the
// authoritative link per patient (DISTINCT ON keeps the first row of the
// authoritative ordering).
func (r *PatientRepository) ListWithAssignment(ctx context.Context) ([]*patient.Assignment, error) {
	db := r.db.WithContext(ctx)

	var rows []*patient.Patient
	if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	if len(rows) == 0 {
		return []*patient.Assignment{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var principals []*domain.Principal
	if err := db.Where("id IN ?", ids).Find(&principals).Error; err != nil {
		return nil, fmt.Errorf("listing patient principals: %w", err)
	}
	emails := make(map[uuid.UUID]string, len(principals))
	for _, p := range principals {
		emails[p.ID] = p.Email
	}

	links, err := authoritativeLinks(db, ids)
	if err != nil {
		return nil, err
	}
	assigned := make(map[uuid.UUID]*patient.CaregiverSummary, len(links))
	for _, l := range links {
		if l.Caregiver == nil {
			continue
		}
		assigned[l.PatientID] = &patient.CaregiverSummary{
			ID:    l.Caregiver.ID,
			Name:  l.Caregiver.FullName(),
			Email: l.Caregiver.Email,
		}
	}

	out := make([]*patient.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, &patient.Assignment{
			Patient:   patient.Normalize(row),
			Email:     emails[row.ID],
			Caregiver: assigned[row.ID],
		})
	}
	return out, nil
}

// authoritativeLinks returns at most one link per patient, chosen by the same
// ordering as LinkRepository.FindAuthoritative.
func authoritativeLinks(db *gorm.DB, patientIDs []uuid.UUID) ([]*caregiver.Link, error) {
	var links []*caregiver.Link
	err := db.
		Select("DISTINCT ON (patient_id) *").
		Where("patient_id IN ?", patientIDs).
		Order("patient_id, " + authoritativeOrder).
		Preload("Caregiver").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("listing authoritative links: %w", err)
	}
	return links, nil
}
