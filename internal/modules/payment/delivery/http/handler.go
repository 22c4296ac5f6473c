package handler

import (
	"gabconcours.ga/backend/internal/modules/payment/dto"
	payment "gabconcours.ga/backend/internal/modules/payment/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentService
}

func NewPaymentHandler(service payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, created, "Paiement enregistré")
}

func (h *PaymentHandler) GetByNupcan(c *gin.Context) {
	payments, err := h.service.GetByNupcan(c.Request.Context(), c.Param("nupcan"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, payments, "")
}
