package handler

import (
	"gabconcours.ga/backend/internal/middleware"
	"gabconcours.ga/backend/internal/modules/participation/dto"
	participation "gabconcours.ga/backend/internal/modules/participation/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ParticipationHandler struct {
	service participation.ParticipationService
}

func NewParticipationHandler(service participation.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{service: service}
}

func (h *ParticipationHandler) Create(c *gin.Context) {
	var req dto.CreateParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, dto.NewParticipationResponse(created), "Participation créée avec succès")
}

func (h *ParticipationHandler) GetByApplicationNumber(c *gin.Context) {
	found, err := h.service.FindByApplicationNumber(c.Request.Context(), c.Param("numero"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, dto.NewParticipationResponse(found), "")
}

func (h *ParticipationHandler) GetByNupcan(c *gin.Context) {
	participations, err := h.service.FindByNupcan(c.Request.Context(), c.Param("nupcan"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data := make([]dto.ParticipationResponse, 0, len(participations))
	for i := range participations {
		data = append(data, dto.NewParticipationResponse(&participations[i]))
	}
	response.OK(c, data, "")
}

func (h *ParticipationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return
	}

	var req dto.UpdateParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), admin, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, dto.NewParticipationResponse(updated), "Participation mise à jour")
}

func (h *ParticipationHandler) Decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	updated, err := h.service.Decide(c.Request.Context(), admin, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, dto.NewParticipationResponse(updated), "Décision enregistrée")
}

func (h *ParticipationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return
	}

	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), admin, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "Participation supprimée")
}
