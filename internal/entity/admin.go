package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleSuperAdmin       = "super_admin"
	RoleInstitutionAdmin = "admin_etablissement"
)

type Admin struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	LastName      string       `gorm:"size:100;not null" json:"last_name"`
	FirstName     string       `gorm:"size:100;not null" json:"first_name"`
	Email         string       `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash  string       `gorm:"size:255;not null" json:"-"`
	Role          string       `gorm:"size:30;not null" json:"role"`
	InstitutionID *uuid.UUID   `gorm:"type:uuid;index" json:"institution_id,omitempty"`
	Institution   *Institution `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"institution,omitempty"`
	Active        bool         `gorm:"not null;default:true" json:"active"`
	CreatedByID   *uuid.UUID   `gorm:"type:uuid" json:"created_by,omitempty"`
	LastLoginAt   *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

func (a *Admin) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// CanAccessInstitution is the single scope rule of the admin surface.
func (a *Admin) CanAccessInstitution(institutionID uuid.UUID) bool {
	if a.IsSuperAdmin() {
		return true
	}
	return a.InstitutionID != nil && *a.InstitutionID == institutionID
}
