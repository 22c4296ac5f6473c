package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipationStatus string

const (
	ParticipationRegistered    ParticipationStatus = "inscrit"
	ParticipationDocsSubmitted ParticipationStatus = "documents_soumis"
	ParticipationPaymentDone   ParticipationStatus = "paiement_effectue"
	ParticipationValidated     ParticipationStatus = "valide"
	ParticipationRejected      ParticipationStatus = "rejete"
)

var participationTransitions = map[ParticipationStatus][]ParticipationStatus{
	ParticipationRegistered:    {ParticipationDocsSubmitted},
	ParticipationDocsSubmitted: {ParticipationPaymentDone},
	ParticipationPaymentDone:   {ParticipationValidated, ParticipationRejected},
}

func (s ParticipationStatus) Valid() bool {
	switch s {
	case ParticipationRegistered, ParticipationDocsSubmitted, ParticipationPaymentDone,
		ParticipationValidated, ParticipationRejected:
		return true
	}
	return false
}

func (s ParticipationStatus) Terminal() bool {
	return s == ParticipationValidated || s == ParticipationRejected
}

// CanTransitionTo reports whether next is a legal single step from s.
func (s ParticipationStatus) CanTransitionTo(next ParticipationStatus) bool {
	for _, allowed := range participationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rank orders the non-terminal statuses along the forward path. Terminal states rank last.
func (s ParticipationStatus) Rank() int {
	switch s {
	case ParticipationRegistered:
		return 1
	case ParticipationDocsSubmitted:
		return 2
	case ParticipationPaymentDone:
		return 3
	case ParticipationValidated, ParticipationRejected:
		return 4
	}
	return 0
}

// ParticipationStatusForStages maps a count of leading completed progression stages to a status.
func ParticipationStatusForStages(completed int) ParticipationStatus {
	switch {
	case completed >= 3:
		return ParticipationPaymentDone
	case completed == 2:
		return ParticipationDocsSubmitted
	default:
		return ParticipationRegistered
	}
}

type Participation struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_participation_candidate_contest" json:"candidate_id"`
	Candidate         *Candidate          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"candidate,omitempty"`
	ContestID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_participation_candidate_contest" json:"contest_id"`
	Contest           *Contest            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"contest,omitempty"`
	TrackID           *uuid.UUID          `gorm:"type:uuid" json:"track_id,omitempty"`
	Track             *Track              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"track,omitempty"`
	ApplicationNumber string              `gorm:"size:40;uniqueIndex;not null" json:"application_number"`
	Status            ParticipationStatus `gorm:"size:30;not null;default:inscrit" json:"status"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Participation) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
