package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Candidate is never hard-deleted; participations, documents and payments restrict on it.
type Candidate struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Nupcan               string     `gorm:"size:30;uniqueIndex;not null" json:"nupcan"`
	LastName             string     `gorm:"size:100;not null" json:"last_name"`
	FirstName            string     `gorm:"size:100;not null" json:"first_name"`
	Email                string     `gorm:"size:150;index;not null" json:"email"`
	Phone                string     `gorm:"size:30" json:"phone"`
	BirthDate            time.Time  `gorm:"type:date" json:"birth_date"`
	BirthPlace           string     `gorm:"size:100" json:"birth_place"`
	OriginProvinceID     *uuid.UUID `gorm:"type:uuid" json:"origin_province_id,omitempty"`
	CurrentProvinceID    *uuid.UUID `gorm:"type:uuid" json:"current_province_id,omitempty"`
	AssignmentProvinceID *uuid.UUID `gorm:"type:uuid" json:"assignment_province_id,omitempty"`
	PhotoURL             *string    `gorm:"type:text" json:"photo_url,omitempty"`
	NationalID           *string    `gorm:"size:50" json:"national_id,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}

// AgeAt returns the candidate's age in whole years on the given day.
func (c *Candidate) AgeAt(day time.Time) int {
	age := day.Year() - c.BirthDate.Year()
	if day.Month() < c.BirthDate.Month() || (day.Month() == c.BirthDate.Month() && day.Day() < c.BirthDate.Day()) {
		age--
	}
	return age
}
