package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient row. The row ID must already reference
	// an existing principal.
	Create(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound if no row exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// Update persists the row as given.
	Update(ctx context.Context, p *Patient) error

	// ListWithAssignment returns every patient, newest first, with the
	// principal's email and the caregiver on the authoritative link.
	ListWithAssignment(ctx context.Context) ([]*Assignment, error)
}
