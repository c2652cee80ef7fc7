package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type DementiaStage string

const (
	StageEarly  DementiaStage = "early"
	StageMiddle DementiaStage = "middle"
	StageLate   DementiaStage = "late"
)

func (s DementiaStage) IsValid() bool {
	switch s {
	case StageEarly, StageMiddle, StageLate:
		return true
	}
	return false
}

// Defaults applied when a stored column is null or empty.
const (
	DefaultLocation            = "Unknown"
	DefaultAffirmation         = "You are safe. You are loved. You are at home."
	DefaultContactName         = "Emergency Contact"
	DefaultContactRelationship = "Family"
	DefaultStage               = StageMiddle
	DefaultLanguage            = "en"
	DefaultFontSize            = "large"
	DefaultTone                = "gentle"
)

// Patient is the stored row. Every descriptive column is nullable; use
// Normalize to obtain the canonical Profile. The id equals the id of the
// patient's Principal, so deleting the principal cascades here.
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	FirstName     *string    `gorm:"column:first_name;type:varchar(100)"`
	LastName      *string    `gorm:"column:last_name;type:varchar(100)"`
	PreferredName *string    `gorm:"column:preferred_name;type:varchar(100)"`
	DateOfBirth   *time.Time `gorm:"column:date_of_birth;type:date"`
	PhotoURL      *string    `gorm:"column:photo_url;type:text"`
	Location      *string    `gorm:"column:location;type:varchar(255)"`
	Address       *string    `gorm:"column:address;type:text"`
	Affirmation   *string    `gorm:"column:affirmation;type:text"`
	DiagnosisDate *time.Time `gorm:"column:diagnosis_date;type:date"`
	DementiaStage *string    `gorm:"column:dementia_stage;type:varchar(20)"`

	EmergencyContactName         *string `gorm:"column:emergency_contact_name;type:varchar(200)"`
	EmergencyContactRelationship *string `gorm:"column:emergency_contact_relationship;type:varchar(100)"`
	EmergencyContactPhone        *string `gorm:"column:emergency_contact_phone;type:varchar(30)"`
	EmergencyContactEmail        *string `gorm:"column:emergency_contact_email;type:varchar(255)"`

	PreferencesLanguage             *string `gorm:"column:preferences_language;type:varchar(10)"`
	PreferencesFontSize             *string `gorm:"column:preferences_font_size;type:varchar(20)"`
	PreferencesHighContrast         *bool   `gorm:"column:preferences_high_contrast"`
	PreferencesAudioEnabled         *bool   `gorm:"column:preferences_audio_enabled"`
	PreferencesNotificationsEnabled *bool   `gorm:"column:preferences_notifications_enabled"`
	PreferencesTone                 *string `gorm:"column:preferences_tone;type:varchar(20)"`
}

func (Patient) TableName() string {
	return "patients"
}

type EmergencyContact struct {
	Name         string  `json:"name"`
	Relationship string  `json:"relationship"`
	Phone        string  `json:"phone"`
	Email        *string `json:"email,omitempty"`
}

type Preferences struct {
	Language             string `json:"language"`
	FontSize             string `json:"font_size"`
	HighContrast         bool   `json:"high_contrast"`
	AudioEnabled         bool   `json:"audio_enabled"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	Tone                 string `json:"tone"`
}

// Profile is the canonical patient shape handed to callers.
type Profile struct {
	ID               uuid.UUID        `json:"id"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	PreferredName    string           `json:"preferred_name"`
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty"`
	PhotoURL         string           `json:"photo_url,omitempty"`
	Location         string           `json:"location"`
	Address          string           `json:"address,omitempty"`
	Affirmation      string           `json:"affirmation"`
	DiagnosisDate    *time.Time       `json:"diagnosis_date,omitempty"`
	DementiaStage    DementiaStage    `json:"dementia_stage"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Preferences      Preferences      `json:"preferences"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Normalize maps a stored row to its canonical Profile, filling defaults for
// every missing field. Unrecognized dementia stages collapse to the default.
func Normalize(row *Patient) *Profile {
	first := str(row.FirstName)

	stage := DementiaStage(str(row.DementiaStage))
	if !stage.IsValid() {
		stage = DefaultStage
	}

	var contactEmail *string
	if e := str(row.EmergencyContactEmail); e != "" {
		contactEmail = &e
	}

	return &Profile{
		ID:            row.ID,
		FirstName:     first,
		LastName:      str(row.LastName),
		PreferredName: strOr(row.PreferredName, first),
		DateOfBirth:   row.DateOfBirth,
		PhotoURL:      str(row.PhotoURL),
		Location:      strOr(row.Location, DefaultLocation),
		Address:       str(row.Address),
		Affirmation:   strOr(row.Affirmation, DefaultAffirmation),
		DiagnosisDate: row.DiagnosisDate,
		DementiaStage: stage,
		EmergencyContact: EmergencyContact{
			Name:         strOr(row.EmergencyContactName, DefaultContactName),
			Relationship: strOr(row.EmergencyContactRelationship, DefaultContactRelationship),
			Phone:        str(row.EmergencyContactPhone),
			Email:        contactEmail,
		},
		Preferences: Preferences{
			Language:             strOr(row.PreferencesLanguage, DefaultLanguage),
			FontSize:             strOr(row.PreferencesFontSize, DefaultFontSize),
			HighContrast:         boolOr(row.PreferencesHighContrast, false),
			AudioEnabled:         boolOr(row.PreferencesAudioEnabled, true),
			NotificationsEnabled: boolOr(row.PreferencesNotificationsEnabled, true),
			Tone:                 strOr(row.PreferencesTone, DefaultTone),
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

// CaregiverSummary identifies the caregiver currently assigned to a patient.
type CaregiverSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Assignment is one row of the administrative patient listing.
type Assignment struct {
	Patient   *Profile          `json:"patient"`
	Email     string            `json:"email"`
	Caregiver *CaregiverSummary `json:"caregiver"`
}

type CreatePatientCommand struct {
	FirstName     string
	LastName      string
	PreferredName *string
	Email         string
	DateOfBirth   *time.Time
	Location      *string
	Address       *string
	DementiaStage *DementiaStage
	Relationship  string

	EmergencyContactName         *string
	EmergencyContactRelationship *string
	EmergencyContactPhone        *string
	EmergencyContactEmail        *string
}

// UpdatePatientCommand carries a partial update; nil fields are left as is.
type UpdatePatientCommand struct {
	FirstName     *string
	LastName      *string
	PreferredName *string
	DateOfBirth   *time.Time
	PhotoURL      *string
	Location      *string
	Address       *string
	Affirmation   *string
	DiagnosisDate *time.Time
	DementiaStage *DementiaStage

	EmergencyContactName         *string
	EmergencyContactRelationship *string
	EmergencyContactPhone        *string
	EmergencyContactEmail        *string

	PreferencesLanguage             *string
	PreferencesFontSize             *string
	PreferencesHighContrast         *bool
	PreferencesAudioEnabled         *bool
	PreferencesNotificationsEnabled *bool
	PreferencesTone                 *string
}

// Apply copies every non-nil field of the command onto the row.
func (c *UpdatePatientCommand) Apply(p *Patient) {
	set := func(dst **string, v *string) {
		if v != nil {
			s := strings.TrimSpace(*v)
			*dst = &s
		}
	}
	setBool := func(dst **bool, v *bool) {
		if v != nil {
			b := *v
			*dst = &b
		}
	}

	set(&p.FirstName, c.FirstName)
	set(&p.LastName, c.LastName)
	set(&p.PreferredName, c.PreferredName)
	set(&p.PhotoURL, c.PhotoURL)
	set(&p.Location, c.Location)
	set(&p.Address, c.Address)
	set(&p.Affirmation, c.Affirmation)
	set(&p.EmergencyContactName, c.EmergencyContactName)
	set(&p.EmergencyContactRelationship, c.EmergencyContactRelationship)
	set(&p.EmergencyContactPhone, c.EmergencyContactPhone)
	set(&p.EmergencyContactEmail, c.EmergencyContactEmail)
	set(&p.PreferencesLanguage, c.PreferencesLanguage)
	set(&p.PreferencesFontSize, c.PreferencesFontSize)
	set(&p.PreferencesTone, c.PreferencesTone)
	setBool(&p.PreferencesHighContrast, c.PreferencesHighContrast)
	setBool(&p.PreferencesAudioEnabled, c.PreferencesAudioEnabled)
	setBool(&p.PreferencesNotificationsEnabled, c.PreferencesNotificationsEnabled)

	if c.DateOfBirth != nil {
		p.DateOfBirth = c.DateOfBirth
	}
	if c.DiagnosisDate != nil {
		p.DiagnosisDate = c.DiagnosisDate
	}
	if c.DementiaStage != nil {
		s := string(*c.DementiaStage)
		p.DementiaStage = &s
	}
}
