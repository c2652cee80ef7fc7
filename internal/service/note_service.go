package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/caregiver"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NoteService struct {
	notes    note.Repository
	patients patient.Repository
	resolver *RoleResolver
	access   patientAccess
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewNoteService(
	notes note.Repository,
	patients patient.Repository,
	links caregiver.Repository,
	resolver *RoleResolver,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *NoteService {
	return &NoteService{
		notes:    notes,
		patients: patients,
		resolver: resolver,
		access:   patientAccess{resolver: resolver, links: links},
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
	}
}

// ListNotes returns the patient's full timeline, newest first.
func (s *NoteService) ListNotes(ctx context.Context, patientID uuid.UUID) ([]*note.View, error) {
	if _, err := s.access.authorize(ctx, patientID); err != nil {
		return nil, err
	}

	notes, err := s.notes.ListByPatient(ctx, patientID, 0)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	return note.Views(notes), nil
}

// AddNote appends a note authored by the caller. Blank text or an unknown
// type fails validation before anything is written.
func (s *NoteService) AddNote(ctx context.Context, patientID uuid.UUID, text string, noteType note.Type) (*note.View, error) {
	text = strings.TrimSpace(text)
	if noteType == "" {
		noteType = note.TypeGeneral
	}

	var errs []string
	if text == "" {
		errs = append(errs, "note is required")
	}
	if !noteType.IsValid() {
		errs = append(errs, note.ErrInvalidNoteType.Error())
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	id, err := s.access.authorize(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, storeErr("get patient", err, patient.ErrPatientNotFound)
	}

	author := id.PrincipalID
	n := &note.Note{
		PatientID:   patientID,
		CaregiverID: &author,
		Text:        text,
		Type:        noteType,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, storeErr("create note", err)
	}

	s.metrics.NoteWritten()
	s.log.Info("note added",
		zap.String("note_id", n.ID.String()),
		zap.String("patient_id", patientID.String()),
		zap.String("type", string(noteType)),
	)
	return n.View(), nil
}

// DeleteNote hard-deletes a note. Only its author or an admin may do so.
func (s *NoteService) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	id, err := s.resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	n, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return storeErr("get note", err, note.ErrNoteNotFound)
	}

	if !id.Admin && !n.AuthoredBy(id.PrincipalID) {
		return ErrForbidden
	}

	if err := s.notes.Delete(ctx, noteID); err != nil {
		return storeErr("delete note", err, note.ErrNoteNotFound)
	}

	s.auditSvc.Record(ctx, domain.ActionDeleteNote, map[string]any{
		"note_id":    noteID.String(),
		"patient_id": n.PatientID.String(),
	})
	return nil
}
