package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrPrincipalNotFound = errors.New("principal not found")

var ErrEmailTaken = errors.New("email is already registered")

type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleCaregiver, RoleAdmin:
		return true
	}
	return false
}

// Principal is an authenticated identity. Patients, caregivers and admins
// all live in the profiles table; the role column is the only stored
// authorization signal.
type Principal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex:idx_profiles_email,where:email <> ''" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	FirstName    string `gorm:"column:first_name;type:varchar(100)" json:"first_name"`
	LastName     string `gorm:"column:last_name;type:varchar(100)" json:"last_name"`
	Role         Role   `gorm:"column:role;type:varchar(20);not null;default:'patient';index" json:"role"`
}

func (Principal) TableName() string {
	return "profiles"
}

func (p *Principal) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Identity is the resolved capability set of the calling principal.
// Admin may be true while Role is patient or caregiver when the principal
// is on the deployment allow-list.
type Identity struct {
	PrincipalID uuid.UUID `json:"principal_id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Admin       bool      `json:"is_admin"`
}

func (i *Identity) IsCaregiver() bool {
	return i.Role == RoleCaregiver
}

type AuditAction string

const (
	ActionGrantCaregiver  AuditAction = "grant_caregiver_role"
	ActionRevokeCaregiver AuditAction = "revoke_caregiver_role"
	ActionReassignPatient AuditAction = "reassign_patient"
	ActionUnassignPatient AuditAction = "unassign_patient"
	ActionDeletePatient   AuditAction = "delete_patient"
	ActionCreatePatient   AuditAction = "create_patient"
	ActionDeleteNote      AuditAction = "delete_note"
	ActionLogin           AuditAction = "login"
	ActionLogout          AuditAction = "logout"
)

// AuditLog is immutable once written. A nil ActorID means the action was
// performed by the system, or the actor has since been deleted.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	ActorID   *uuid.UUID     `gorm:"column:actor_id;type:uuid;index" json:"actor_id,omitempty"`
	Action    AuditAction    `gorm:"column:action;type:varchar(40);not null;index" json:"action"`
	Details   datatypes.JSON `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	IPAddress string         `gorm:"column:ip_address;type:varchar(45)" json:"ip_address,omitempty"`

	Actor *Principal `gorm:"foreignKey:ActorID" json:"-"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	PrincipalID uuid.UUID `json:"sub"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
}
