package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/carerecord"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordRepository reads the collections that hang off a patient. Every
// method returns a non-nil slice on success.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func find[T any](ctx context.Context, q *gorm.DB, what string) ([]*T, error) {
	out := []*T{}
	if err := q.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}
	return out, nil
}

func (r *RecordRepository) ListActiveTasks(ctx context.Context, patientID uuid.UUID) ([]*carerecord.Task, error) {
	q := r.db.Where("patient_id = ? AND is_active = ?", patientID, true).Order("scheduled_time ASC")
	return find[carerecord.Task](ctx, q, "tasks")
}

func (r *RecordRepository) ListActiveMedications(ctx context.Context, patientID uuid.UUID) ([]*carerecord.Medication, error) {
	q := r.db.Where("patient_id = ? AND is_active = ?", patientID, true).Order("name ASC")
	return find[carerecord.Medication](ctx, q, "medications")
}

func (r *RecordRepository) ListAppointments(ctx context.Context, patientID uuid.UUID) ([]*carerecord.Appointment, error) {
	q := r.db.Where("patient_id = ?", patientID).Order("date ASC").Order("time ASC")
	return find[carerecord.Appointment](ctx, q, "appointments")
}

func (r *RecordRepository) ListMemories(ctx context.Context, patientID uuid.UUID, limit int) ([]*carerecord.Memory, error) {
	q := r.db.Where("patient_id = ?", patientID).Order("created_at DESC").Limit(limit)
	return find[carerecord.Memory](ctx, q, "memories")
}

func (r *RecordRepository) ListRecentMoodEntries(ctx context.Context, patientID uuid.UUID, limit int) ([]*carerecord.MoodEntry, error) {
	q := r.db.Where("patient_id = ?", patientID).Order("timestamp DESC").Limit(limit)
	return find[carerecord.MoodEntry](ctx, q, "mood entries")
}

func (r *RecordRepository) ListCareTeam(ctx context.Context, patientID uuid.UUID) ([]*carerecord.CareTeamMember, error) {
	q := r.db.Where("patient_id = ?", patientID).Order("is_primary DESC").Order("name ASC")
	return find[carerecord.CareTeamMember](ctx, q, "care team")
}

func (r *RecordRepository) ListMedicationLogsForDate(ctx context.Context, patientID uuid.UUID, date string) ([]*carerecord.MedicationLog, error) {
	q := r.db.Where("patient_id = ? AND date = ?", patientID, date).Order("scheduled_time ASC")
	return find[carerecord.MedicationLog](ctx, q, "medication logs")
}
