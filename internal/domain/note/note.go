package note

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/google/uuid"
)

type Type string

const (
	TypeGeneral  Type = "general"
	TypeMedical  Type = "medical"
	TypeMood     Type = "mood"
	TypeActivity Type = "activity"
	TypeBehavior Type = "behavior"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeGeneral, TypeMedical, TypeMood, TypeActivity, TypeBehavior:
		return true
	}
	return false
}

const UnknownAuthor = "Unknown"

// Note is an entry on a patient's timeline. CaregiverID becomes nil when the
// authoring principal is deleted.
type Note struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	PatientID   uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	CaregiverID *uuid.UUID `gorm:"column:caregiver_id;type:uuid;index" json:"caregiver_id,omitempty"`
	Text        string     `gorm:"column:note;type:text;not null" json:"note"`
	Type        Type       `gorm:"column:note_type;type:varchar(20);not null;default:'general'" json:"note_type"`

	Caregiver *domain.Principal `gorm:"foreignKey:CaregiverID" json:"-"`
}

func (Note) TableName() string {
	return "patient_notes"
}

// CaregiverName is the author's full name, or UnknownAuthor when the author
// record was not loaded or no longer exists.
func (n *Note) CaregiverName() string {
	if n.Caregiver == nil {
		return UnknownAuthor
	}
	if name := n.Caregiver.FullName(); name != "" {
		return name
	}
	return UnknownAuthor
}

// AuthoredBy reports whether id is the note's author.
func (n *Note) AuthoredBy(id uuid.UUID) bool {
	return n.CaregiverID != nil && *n.CaregiverID == id
}

// View is the serialized form of a note with its author name resolved.
type View struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	CaregiverID   *uuid.UUID `json:"caregiver_id,omitempty"`
	CaregiverName string     `json:"caregiver_name"`
	Text          string     `json:"note"`
	Type          Type       `json:"note_type"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (n *Note) View() *View {
	return &View{
		ID:            n.ID,
		PatientID:     n.PatientID,
		CaregiverID:   n.CaregiverID,
		CaregiverName: n.CaregiverName(),
		Text:          n.Text,
		Type:          n.Type,
		CreatedAt:     n.CreatedAt,
	}
}

func Views(notes []*Note) []*View {
	out := make([]*View, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.View())
	}
	return out
}
