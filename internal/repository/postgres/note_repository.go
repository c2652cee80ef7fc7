package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *note.Note) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Caregiver").Create(n).Error; err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	if err := db.Preload("Caregiver").First(n, "id = ?", n.ID).Error; err != nil {
		return fmt.Errorf("reloading note: %w", err)
	}
	return nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*note.Note, error) {
	var n note.Note
	if err := r.db.WithContext(ctx).Preload("Caregiver").First(&n, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, note.ErrNoteNotFound
		}
		return nil, fmt.Errorf("selecting note: %w", err)
	}
	return &n, nil
}

func (r *NoteRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*note.Note, error) {
	q := r.db.WithContext(ctx).
		Preload("Caregiver").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []*note.Note
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return out, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&note.Note{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return note.ErrNoteNotFound
	}
	return nil
}
