package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContestFilter struct {
	Search        string `form:"search"`
	InstitutionID string `form:"etablissement_id" binding:"omitempty,uuid"`
	OpenOnly      bool   `form:"open"`
}

type CreateContestRequest struct {
	Label         string          `json:"label" binding:"required,max=200"`
	Session       string          `json:"session" binding:"max=50"`
	Fee           decimal.Decimal `json:"fee"`
	MaxAge        *int            `json:"max_age" binding:"omitempty,min=1"`
	IsOpen        *bool           `json:"is_open"`
	InstitutionID uuid.UUID       `json:"institution_id" binding:"required"`
	TrackIDs      []uuid.UUID     `json:"track_ids"`
}

type SubjectFilter struct {
	TrackID string `form:"filiere_id" binding:"omitempty,uuid"`
}

type SubjectRequest struct {
	Name        string     `json:"name" binding:"required,max=150"`
	Coefficient int        `json:"coefficient" binding:"omitempty,min=1"`
	TrackID     *uuid.UUID `json:"track_id"`
}
