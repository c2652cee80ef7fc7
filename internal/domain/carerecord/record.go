package carerecord

import (
	"math"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/patient"
	"github.com/google/uuid"
)

// Limits applied to the dependent collections of a care record.
const (
	RecentNotesLimit = 5
	MemoriesLimit    = 10
	MoodEntriesLimit = 5
)

// Collection names, used for logging and the degraded-fetch metric.
const (
	CollectionTasks          = "tasks"
	CollectionMedications    = "medications"
	CollectionMedicationLogs = "medication_logs"
	CollectionAppointments   = "appointments"
	CollectionNotes          = "notes"
	CollectionMemories       = "memories"
	CollectionMoodEntries    = "mood_entries"
	CollectionCareTeam       = "care_team"
)

// Placeholder fills categories that have no backing store yet. They are
// always serialized as empty arrays.
type Placeholder struct{}

type DashboardStats struct {
	PatientID                uuid.UUID     `json:"patient_id"`
	TasksCompleted           int           `json:"tasks_completed"`
	TasksTotal               int           `json:"tasks_total"`
	TasksCompletionRate      int           `json:"tasks_completion_rate"`
	MedicationsTaken         int           `json:"medications_taken"`
	MedicationsTotal         int           `json:"medications_total"`
	MedicationsAdherenceRate int           `json:"medications_adherence_rate"`
	MoodToday                *string       `json:"mood_today"`
	MoodTrend                string        `json:"mood_trend"`
	SleepHours               float64       `json:"sleep_hours"`
	SleepQuality             string        `json:"sleep_quality"`
	ActivitiesCompleted      int           `json:"activities_completed"`
	BehaviorIncidents        int           `json:"behavior_incidents"`
	Alerts                   []Placeholder `json:"alerts"`
}

// CareRecord is the aggregated view of one patient.
type CareRecord struct {
	Patient            *patient.Profile  `json:"patient"`
	Tasks              []*Task           `json:"tasks"`
	Medications        []*Medication     `json:"medications"`
	MedicationLogs     []*MedicationLog  `json:"medication_logs"`
	MoodEntries        []*MoodEntry      `json:"mood_entries"`
	Memories           []*Memory         `json:"memories"`
	CareTeam           []*CareTeamMember `json:"care_team"`
	Appointments       []*Appointment    `json:"appointments"`
	RecentNotes        []*note.View      `json:"recent_notes"`
	Stats              *DashboardStats   `json:"stats"`
	Documents          []Placeholder     `json:"documents"`
	Reminders          []Placeholder     `json:"reminders"`
	VitalSigns         []Placeholder     `json:"vital_signs"`
	SleepEntries       []Placeholder     `json:"sleep_entries"`
	Goals              []Placeholder     `json:"goals"`
	SafetyAlerts       []Placeholder     `json:"safety_alerts"`
	ADLAssessments     []Placeholder     `json:"adl_assessments"`
	NutritionLogs      []Placeholder     `json:"nutrition_logs"`
	BehaviorLogs       []Placeholder     `json:"behavior_logs"`
	Alerts             []Placeholder     `json:"alerts"`
	DegradedCategories []string          `json:"degraded_categories,omitempty"`
}

// Sources holds the fetched collections a record is assembled from.
// Nil slices are treated as empty.
type Sources struct {
	Tasks          []*Task
	Medications    []*Medication
	MedicationLogs []*MedicationLog
	MoodEntries    []*MoodEntry
	Memories       []*Memory
	CareTeam       []*CareTeamMember
	Appointments   []*Appointment
	Notes          []*note.Note
}

// Assemble builds the composite record and its derived stats. Every
// collection in the result is non-nil.
func Assemble(profile *patient.Profile, src Sources) *CareRecord {
	return &CareRecord{
		Patient:        profile,
		Tasks:          orEmpty(src.Tasks),
		Medications:    orEmpty(src.Medications),
		MedicationLogs: orEmpty(src.MedicationLogs),
		MoodEntries:    orEmpty(src.MoodEntries),
		Memories:       orEmpty(src.Memories),
		CareTeam:       orEmpty(src.CareTeam),
		Appointments:   orEmpty(src.Appointments),
		RecentNotes:    note.Views(src.Notes),
		Stats:          ComputeStats(profile.ID, src.Tasks, src.Medications, src.MedicationLogs, src.MoodEntries),
		Documents:      []Placeholder{},
		Reminders:      []Placeholder{},
		VitalSigns:     []Placeholder{},
		SleepEntries:   []Placeholder{},
		Goals:          []Placeholder{},
		SafetyAlerts:   []Placeholder{},
		ADLAssessments: []Placeholder{},
		NutritionLogs:  []Placeholder{},
		BehaviorLogs:   []Placeholder{},
		Alerts:         []Placeholder{},
	}
}

// ComputeStats derives dashboard indicators. tasks and meds are the active
// rows; logs are today's dose logs.
func ComputeStats(patientID uuid.UUID, tasks []*Task, meds []*Medication, logs []*MedicationLog, moods []*MoodEntry) *DashboardStats {
	completed := 0
	for _, t := range tasks {
		if t.Status == TaskStatusCompleted {
			completed++
		}
	}

	taken := 0
	for _, l := range logs {
		if l.Status == DoseStatusTaken {
			taken++
		}
	}

	return &DashboardStats{
		PatientID:                patientID,
		TasksCompleted:           completed,
		TasksTotal:               len(tasks),
		TasksCompletionRate:      percent(completed, len(tasks)),
		MedicationsTaken:         taken,
		MedicationsTotal:         len(meds),
		MedicationsAdherenceRate: percent(taken, len(meds)),
		MoodToday:                latestMood(moods),
		MoodTrend:                "stable",
		SleepHours:               7,
		SleepQuality:             "good",
		ActivitiesCompleted:      0,
		BehaviorIncidents:        0,
		Alerts:                   []Placeholder{},
	}
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// latestMood picks the entry with the greatest timestamp; the first one
// seen wins a tie.
func latestMood(moods []*MoodEntry) *string {
	var latest *MoodEntry
	for _, m := range moods {
		if latest == nil || m.Timestamp.After(latest.Timestamp) {
			latest = m
		}
	}
	if latest == nil {
		return nil
	}
	mood := latest.Mood
	return &mood
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
