package note

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the note and reloads it with its author.
	Create(ctx context.Context, n *Note) error

	// GetByID returns ErrNoteNotFound if no row exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)

	// ListByPatient returns notes newest first with authors preloaded.
	// A limit of zero returns every note.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Note, error)

	// Delete returns ErrNoteNotFound if no row was removed.
	Delete(ctx context.Context, id uuid.UUID) error
}
