package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationStatus is shared by documents and payments.
type ValidationStatus string

const (
	StatusPending   ValidationStatus = "en_attente"
	StatusValidated ValidationStatus = "valide"
	StatusRejected  ValidationStatus = "rejete"
)

func (s ValidationStatus) Valid() bool {
	return s == StatusPending || s == StatusValidated || s == StatusRejected
}

type Document struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Candidate       *Candidate       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Nupcan          string           `gorm:"size:30;index;not null" json:"nupcan"`
	Name            string           `gorm:"size:200;not null" json:"name"`
	Type            string           `gorm:"size:50;not null" json:"type"`
	StoredName      string           `gorm:"size:255;uniqueIndex;not null" json:"stored_name"`
	Size            int64            `gorm:"not null" json:"size"`
	Status          ValidationStatus `gorm:"size:20;not null;default:en_attente;index" json:"status"`
	RejectionReason *string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	ValidatedByID   *uuid.UUID       `gorm:"type:uuid" json:"validated_by,omitempty"`
	ValidatedAt     *time.Time       `json:"validated_at,omitempty"`
	UploadedAt      time.Time        `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}
