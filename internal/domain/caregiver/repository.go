package caregiver

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, l *Link) error

	// ListByCaregiver returns the caregiver's links in creation order.
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*Link, error)

	// FindAuthoritative returns the patient's authoritative link: primary rows
	// first, then most recently created. Returns ErrLinkNotFound if none.
	FindAuthoritative(ctx context.Context, patientID uuid.UUID) (*Link, error)

	// Exists reports whether any link row joins the caregiver and patient.
	Exists(ctx context.Context, caregiverID, patientID uuid.UUID) (bool, error)

	// UpdateCaregiver rewrites the caregiver reference of one row in place.
	UpdateCaregiver(ctx context.Context, linkID, caregiverID uuid.UUID) error

	Delete(ctx context.Context, linkID uuid.UUID) error

	// ListCaregiverSummaries returns every principal with the caregiver role,
	// newest first, with its link count.
	ListCaregiverSummaries(ctx context.Context) ([]*Summary, error)
}
