package handler

import (
	progression "gabconcours.ga/backend/internal/modules/progression/service"
	"gabconcours.ga/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type DossierHandler struct {
	service progression.DossierService
}

func NewDossierHandler(service progression.DossierService) *DossierHandler {
	return &DossierHandler{service: service}
}

func (h *DossierHandler) GetByNupcan(c *gin.Context) {
	dossier, err := h.service.GetByNupcan(c.Request.Context(), c.Param("nupcan"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, dossier, "")
}
