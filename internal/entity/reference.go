package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Institution struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Acronym   string    `gorm:"size:30;uniqueIndex" json:"acronym"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (i *Institution) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

type Province struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (p *Province) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// Contest is a competitive-entry exam. A zero Fee marks a free (NGORI) contest.
type Contest struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Label         string          `gorm:"size:200;not null" json:"label"`
	Session       string          `gorm:"size:50" json:"session"`
	Fee           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"fee"`
	MaxAge        *int            `json:"max_age,omitempty"`
	IsOpen        bool            `gorm:"not null;default:true" json:"is_open"`
	InstitutionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"institution_id"`
	Institution   Institution     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"institution"`
	Tracks        []Track         `gorm:"many2many:contest_tracks" json:"tracks,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Contest) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

func (c *Contest) IsFree() bool {
	return c.Fee.IsZero()
}

type Track struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Subjects    []Subject `gorm:"constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
}

func (t *Track) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// Subject is an exam subject (matière) of a track.
type Subject struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:150;not null" json:"name"`
	Coefficient int        `gorm:"not null;default:1" json:"coefficient"`
	TrackID     *uuid.UUID `gorm:"type:uuid;index" json:"track_id,omitempty"`
}

func (s *Subject) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
