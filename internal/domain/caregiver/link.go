package caregiver

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/google/uuid"
)

// DefaultRelationship labels the link written when a caregiver creates a
// patient without naming the relationship.
const DefaultRelationship = "Primary Caregiver"

// Link is one caregiver↔patient assignment row. The store does not enforce
// uniqueness per patient; see Repository.FindAuthoritative.
type Link struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	CaregiverID  uuid.UUID `gorm:"column:caregiver_id;type:uuid;not null;index" json:"caregiver_id"`
	PatientID    uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Relationship *string   `gorm:"column:relationship;type:varchar(100)" json:"relationship,omitempty"`
	IsPrimary    bool      `gorm:"column:is_primary;not null;default:false" json:"is_primary"`

	Caregiver *domain.Principal `gorm:"foreignKey:CaregiverID" json:"-"`
}

func (Link) TableName() string {
	return "caregiver_patients"
}

// Summary is a caregiver with the number of link rows referencing them.
type Summary struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	PatientCount int64     `json:"patients_count"`
}
