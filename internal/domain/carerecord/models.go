package carerecord

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskStatusCompleted = "completed"
	DoseStatusTaken     = "taken"
)

type Task struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID     `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Title         string        `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description   *string       `gorm:"column:description;type:text" json:"description,omitempty"`
	Icon          string        `gorm:"column:icon;type:varchar(50)" json:"icon"`
	TimeOfDay     string        `gorm:"column:time_of_day;type:varchar(20)" json:"time_of_day"`
	ScheduledTime string        `gorm:"column:scheduled_time;type:varchar(8)" json:"scheduled_time"`
	DaysOfWeek    pq.Int64Array `gorm:"column:days_of_week;type:integer[]" json:"days_of_week"`
	Status        string        `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	CompletedAt   *time.Time    `gorm:"column:completed_at" json:"completed_at,omitempty"`
	IsRecurring   bool          `gorm:"column:is_recurring;default:false" json:"is_recurring"`
	Difficulty    string        `gorm:"column:difficulty;type:varchar(20)" json:"difficulty"`
	IsActive      bool          `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
}

func (Task) TableName() string { return "tasks" }

type Medication struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	PatientID        uuid.UUID      `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Name             string         `gorm:"column:name;type:varchar(200);not null" json:"name"`
	GenericName      *string        `gorm:"column:generic_name;type:varchar(200)" json:"generic_name,omitempty"`
	Dosage           string         `gorm:"column:dosage;type:varchar(100)" json:"dosage"`
	Form             string         `gorm:"column:form;type:varchar(50)" json:"form"`
	Instructions     string         `gorm:"column:instructions;type:text" json:"instructions"`
	PrescribedBy     string         `gorm:"column:prescribed_by;type:varchar(200)" json:"prescribed_by"`
	PrescriptionDate *time.Time     `gorm:"column:prescription_date;type:date" json:"prescription_date,omitempty"`
	SideEffects      pq.StringArray `gorm:"column:side_effects;type:text[]" json:"side_effects"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
}

func (Medication) TableName() string { return "medications" }

// MedicationLog records one scheduled dose. Date is the calendar day the
// dose belongs to, formatted YYYY-MM-DD.
type MedicationLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MedicationID  uuid.UUID  `gorm:"column:medication_id;type:uuid;not null;index" json:"medication_id"`
	PatientID     uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index:idx_medication_logs_patient_date,priority:1" json:"patient_id"`
	ScheduledTime string     `gorm:"column:scheduled_time;type:varchar(8)" json:"scheduled_time"`
	TakenTime     *time.Time `gorm:"column:taken_time" json:"taken_time,omitempty"`
	Status        string     `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Notes         *string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	RecordedBy    string     `gorm:"column:recorded_by;type:varchar(100)" json:"recorded_by"`
	Date          string     `gorm:"column:date;type:varchar(10);not null;index:idx_medication_logs_patient_date,priority:2" json:"date"`
}

func (MedicationLog) TableName() string { return "medication_logs" }

type MoodEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID  uuid.UUID      `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Mood       string         `gorm:"column:mood;type:varchar(30);not null" json:"mood"`
	Intensity  *int           `gorm:"column:intensity" json:"intensity,omitempty"`
	Note       *string        `gorm:"column:note;type:text" json:"note,omitempty"`
	Triggers   pq.StringArray `gorm:"column:triggers;type:text[]" json:"triggers"`
	TimeOfDay  string         `gorm:"column:time_of_day;type:varchar(20)" json:"time_of_day"`
	Timestamp  time.Time      `gorm:"column:timestamp;not null;index" json:"timestamp"`
	RecordedBy string         `gorm:"column:recorded_by;type:varchar(100)" json:"recorded_by"`
}

func (MoodEntry) TableName() string { return "mood_entries" }

type Memory struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	PatientID   uuid.UUID      `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Title       string         `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description *string        `gorm:"column:description;type:text" json:"description,omitempty"`
	PhotoURL    *string        `gorm:"column:photo_url;type:text" json:"photo_url,omitempty"`
	AudioURL    *string        `gorm:"column:audio_url;type:text" json:"audio_url,omitempty"`
	Date        *string        `gorm:"column:date;type:varchar(10)" json:"date,omitempty"`
	Location    *string        `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`
	People      pq.StringArray `gorm:"column:people;type:text[]" json:"people"`
	Category    string         `gorm:"column:category;type:varchar(50)" json:"category"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	IsFavorite  bool           `gorm:"column:is_favorite;default:false" json:"is_favorite"`
	CreatedBy   string         `gorm:"column:created_by;type:varchar(100)" json:"created_by"`
}

func (Memory) TableName() string { return "memories" }

type CareTeamMember struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID    uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Name         string    `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Role         string    `gorm:"column:role;type:varchar(100)" json:"role"`
	Specialty    *string   `gorm:"column:specialty;type:varchar(100)" json:"specialty,omitempty"`
	Organization *string   `gorm:"column:organization;type:varchar(200)" json:"organization,omitempty"`
	Phone        string    `gorm:"column:phone;type:varchar(30)" json:"phone"`
	Email        *string   `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	IsPrimary    bool      `gorm:"column:is_primary;default:false" json:"is_primary"`
}

func (CareTeamMember) TableName() string { return "care_team_members" }

type Appointment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	PatientID   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Title       string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Provider    string    `gorm:"column:provider;type:varchar(200)" json:"provider"`
	Location    *string   `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`
	Date        string    `gorm:"column:date;type:varchar(10);not null" json:"date"`
	Time        string    `gorm:"column:time;type:varchar(8)" json:"time"`
	Notes       *string   `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ReminderSet bool      `gorm:"column:reminder_set;default:false" json:"reminder_set"`
}

func (Appointment) TableName() string { return "appointments" }
