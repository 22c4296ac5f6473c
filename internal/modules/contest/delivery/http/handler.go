package handler

import (
	"gabconcours.ga/backend/internal/modules/contest/dto"
	contest "gabconcours.ga/backend/internal/modules/contest/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContestHandler struct {
	service contest.ContestService
}

func NewContestHandler(service contest.ContestService) *ContestHandler {
	return &ContestHandler{service: service}
}

func (h *ContestHandler) ListContests(c *gin.Context) {
	var filter dto.ContestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, apperror.Validation("Filtre invalide", validator.FormatValidationErrors(err)...))
		return
	}

	contests, err := h.service.ListContests(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, contests, "Concours récupérés avec succès")
}

func (h *ContestHandler) GetContest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetContest(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, result, "")
}

func (h *ContestHandler) ListTracks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	tracks, err := h.service.ListTracks(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, tracks, "")
}

func (h *ContestHandler) CreateContest(c *gin.Context) {
	var req dto.CreateContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	created, err := h.service.CreateContest(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, created, "Concours créé avec succès")
}

func (h *ContestHandler) DeleteContest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteContest(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "Concours supprimé avec succès")
}

func (h *ContestHandler) ListInstitutions(c *gin.Context) {
	institutions, err := h.service.ListInstitutions(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, institutions, "")
}

func (h *ContestHandler) ListProvinces(c *gin.Context) {
	provinces, err := h.service.ListProvinces(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, provinces, "")
}

func (h *ContestHandler) ListSubjects(c *gin.Context) {
	var filter dto.SubjectFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, apperror.Validation("Filtre invalide", validator.FormatValidationErrors(err)...))
		return
	}

	subjects, err := h.service.ListSubjects(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, subjects, "")
}

func (h *ContestHandler) CreateSubject(c *gin.Context) {
	var req dto.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	subject, err := h.service.CreateSubject(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Created(c, subject, "Matière créée avec succès")
}

func (h *ContestHandler) UpdateSubject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	subject, err := h.service.UpdateSubject(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, subject, "Matière mise à jour avec succès")
}

func (h *ContestHandler) DeleteSubject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSubject(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, nil, "Matière supprimée avec succès")
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return uuid.Nil, false
	}
	return id, true
}
