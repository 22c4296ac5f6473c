package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentAirtelMoney  PaymentMethod = "airtel_money"
	PaymentMoovMoney    PaymentMethod = "moov_money"
	PaymentBankTransfer PaymentMethod = "virement"
)

// Payment keeps NUPCAN and contest redundantly so it survives later candidate edits.
// CandidateID and ContestID stay nil when the NUPCAN could not be resolved at creation.
type Payment struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID     *uuid.UUID       `gorm:"type:uuid;index" json:"candidate_id,omitempty"`
	Candidate       *Candidate       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ContestID       *uuid.UUID       `gorm:"type:uuid;index" json:"contest_id,omitempty"`
	Contest         *Contest         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"contest,omitempty"`
	Nupcan          string           `gorm:"size:30;index;not null" json:"nupcan"`
	Amount          decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method          PaymentMethod    `gorm:"size:20;not null" json:"method"`
	Reference       string           `gorm:"size:100" json:"reference"`
	Status          ValidationStatus `gorm:"size:20;not null;default:en_attente;index" json:"status"`
	RejectionReason *string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	PaidAt          time.Time        `json:"paid_at"`
	ValidatedAt     *time.Time       `json:"validated_at,omitempty"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	return
}
