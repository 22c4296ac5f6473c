package handler

import (
	"fmt"
	"net/http"

	"gabconcours.ga/backend/internal/modules/document/dto"
	document "gabconcours.ga/backend/internal/modules/document/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	service document.DocumentService
}

func NewDocumentHandler(service document.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	var input dto.UploadInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, apperror.Validation("Fichier requis"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, apperror.Validation("Impossible de lire le fichier"))
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), input, dto.UploadedFile{
		Reader:      file,
		FileName:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, doc, "Document téléversé")
}

func (h *DocumentHandler) ListByNupcan(c *gin.Context) {
	docs, err := h.service.ListByNupcan(c.Request.Context(), c.Param("nupcan"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, docs, "")
}

// Download streams the raw file outside the JSON envelope.
func (h *DocumentHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return
	}

	download, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer download.File.Close()

	c.DataFromReader(http.StatusOK, download.Size, download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.FileName),
	})
}
