package dto

import (
	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
)

type CreateParticipationRequest struct {
	Nupcan    string     `json:"nupcan" binding:"required"`
	ContestID uuid.UUID  `json:"contest_id" binding:"required"`
	TrackID   *uuid.UUID `json:"track_id"`
}

type UpdateParticipationRequest struct {
	TrackID *uuid.UUID `json:"track_id"`
	Status  *string    `json:"status" binding:"omitempty,oneof=inscrit documents_soumis paiement_effectue valide rejete"`
}

type DecisionRequest struct {
	Status string `json:"status" binding:"required,oneof=valide rejete"`
	Reason string `json:"reason" binding:"max=1000"`
}

type ParticipationResponse struct {
	*entity.Participation
	InstitutionName string `json:"institution_name,omitempty"`
	ContestLabel    string `json:"contest_label,omitempty"`
}

func NewParticipationResponse(p *entity.Participation) ParticipationResponse {
	resp := ParticipationResponse{Participation: p}
	if p.Contest != nil {
		resp.ContestLabel = p.Contest.Label
		resp.InstitutionName = p.Contest.Institution.Name
	}
	return resp
}
