package dto

import (
	"gabconcours.ga/backend/internal/entity"
)

type ValidateDocumentRequest struct {
	Status entity.ValidationStatus `json:"status" binding:"required,oneof=valide rejete en_attente"`
	Reason string                  `json:"reason" binding:"max=1000"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type SearchQuery struct {
	Query string `form:"q"`
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CandidateFile is one candidate of an institution with the documents on file.
type CandidateFile struct {
	Candidate         *entity.Candidate          `json:"candidate"`
	ApplicationNumber string                     `json:"application_number"`
	ContestLabel      string                     `json:"contest_label"`
	Status            entity.ParticipationStatus `json:"status"`
	Documents         []entity.Document          `json:"documents"`
}

// DossierEntry is a document flattened with its owner's name.
type DossierEntry struct {
	entity.Document
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}

type SearchResponse struct {
	Data   []entity.Candidate `json:"data"`
	Total  int64              `json:"total"`
	Source string             `json:"source"`
}

type SearchToken struct {
	Token string `json:"token"`
	Index string `json:"index"`
}
