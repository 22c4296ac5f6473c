package handler

import (
	"gabconcours.ga/backend/internal/middleware"
	stat "gabconcours.ga/backend/internal/modules/stat/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	service stat.StatService
}

func NewStatHandler(service stat.StatService) *StatHandler {
	return &StatHandler{service: service}
}

func (h *StatHandler) Overview(c *gin.Context) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	stats, err := h.service.Overview(c.Request.Context(), admin)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, stats, "")
}

func (h *StatHandler) DocumentValidation(c *gin.Context) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	stats, err := h.service.DocumentValidation(c.Request.Context(), admin)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, stats, "")
}
