package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationDocumentValidated = "document_valide"
	NotificationDocumentRejected  = "document_rejete"
	NotificationPaymentValidated  = "paiement_valide"
	NotificationPaymentRejected   = "paiement_rejete"
	NotificationApplicationValid  = "candidature_validee"
	NotificationApplicationReject = "candidature_rejetee"
)

// Notification records one status transition and is the unit of email dispatch.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID uuid.UUID  `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Nupcan      string     `gorm:"size:30;index;not null" json:"nupcan"`
	Email       string     `gorm:"size:150" json:"-"`
	Recipient   string     `gorm:"size:200" json:"-"`
	Type        string     `gorm:"size:50;not null" json:"type"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Reason      *string    `gorm:"type:text" json:"reason,omitempty"`
	IsRead      bool       `gorm:"default:false" json:"is_read"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Approved reports whether the transition is good news for the candidate.
func (n *Notification) Approved() bool {
	switch n.Type {
	case NotificationDocumentValidated, NotificationPaymentValidated, NotificationApplicationValid:
		return true
	}
	return false
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
