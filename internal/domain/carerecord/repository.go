package carerecord

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads the dependent collections of a patient. Each method is an
// independent query so callers can fetch them concurrently.
type Repository interface {
	ListActiveTasks(ctx context.Context, patientID uuid.UUID) ([]*Task, error)
	ListActiveMedications(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
	ListAppointments(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListMemories(ctx context.Context, patientID uuid.UUID, limit int) ([]*Memory, error)
	// ListRecentMoodEntries orders by event timestamp, newest first.
	ListRecentMoodEntries(ctx context.Context, patientID uuid.UUID, limit int) ([]*MoodEntry, error)
	ListCareTeam(ctx context.Context, patientID uuid.UUID) ([]*CareTeamMember, error)
	// ListMedicationLogsForDate matches the date column exactly (YYYY-MM-DD).
	ListMedicationLogsForDate(ctx context.Context, patientID uuid.UUID, date string) ([]*MedicationLog, error)
}
