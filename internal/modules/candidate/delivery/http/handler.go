package handler

import (
	"mime/multipart"

	"gabconcours.ga/backend/internal/middleware"
	"gabconcours.ga/backend/internal/modules/candidate/dto"
	candidate "gabconcours.ga/backend/internal/modules/candidate/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	service candidate.CandidateService
}

func NewCandidateHandler(service candidate.CandidateService) *CandidateHandler {
	return &CandidateHandler{service: service}
}

// openPhoto returns the optional "photo" part of a multipart request.
func openPhoto(c *gin.Context) (*dto.PhotoFile, multipart.File, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil || fileHeader == nil {
		return nil, nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperror.Validation("Impossible de lire la photo")
	}

	return &dto.PhotoFile{
		Reader:      file,
		FileName:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, file, nil
}

func (h *CandidateHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	photo, file, err := openPhoto(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	res, err := h.service.Register(c.Request.Context(), input, photo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, res, "Candidature enregistrée avec succès")
}

func (h *CandidateHandler) GetByNupcan(c *gin.Context) {
	found, err := h.service.GetByNupcan(c.Request.Context(), c.Param("nupcan"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, found, "")
}

func (h *CandidateHandler) CheckNupcan(c *gin.Context) {
	res, err := h.service.CheckNupcan(c.Request.Context(), c.Query("nupcan"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "")
}

func (h *CandidateHandler) Update(c *gin.Context) {
	var input dto.UpdateInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	photo, file, err := openPhoto(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("nupcan"), input, photo)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, updated, "Candidat mis à jour")
}

func (h *CandidateHandler) List(c *gin.Context) {
	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, apperror.Validation("Filtre invalide", validator.FormatValidationErrors(err)...))
		return
	}

	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	res, err := h.service.List(c.Request.Context(), admin, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "")
}
