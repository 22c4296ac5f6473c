package handler

import (
	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/middleware"
	"gabconcours.ga/backend/internal/modules/review/dto"
	review "gabconcours.ga/backend/internal/modules/review/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	service review.ReviewService
}

func NewReviewHandler(service review.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// adminAndID resolves the authenticated admin and the uuid path parameter name.
func adminAndID(c *gin.Context, name string) (*entity.Admin, uuid.UUID, bool) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return nil, uuid.Nil, false
	}
	return admin, id, true
}

func (h *ReviewHandler) InstitutionCandidates(c *gin.Context) {
	admin, institutionID, ok := adminAndID(c, "id")
	if !ok {
		return
	}

	files, err := h.service.InstitutionCandidates(c.Request.Context(), admin, institutionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, files, "")
}

func (h *ReviewHandler) InstitutionDossiers(c *gin.Context) {
	admin, institutionID, ok := adminAndID(c, "id")
	if !ok {
		return
	}

	entries, err := h.service.InstitutionDossiers(c.Request.Context(), admin, institutionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, entries, "")
}

func (h *ReviewHandler) InstitutionPayments(c *gin.Context) {
	admin, institutionID, ok := adminAndID(c, "id")
	if !ok {
		return
	}

	payments, err := h.service.InstitutionPayments(c.Request.Context(), admin, institutionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, payments, "")
}

func (h *ReviewHandler) ValidateDocument(c *gin.Context) {
	admin, id, ok := adminAndID(c, "id")
	if !ok {
		return
	}

	var req dto.ValidateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	document, err := h.service.ValidateDocument(c.Request.Context(), admin, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	message := "Document validé"
	switch document.Status {
	case entity.StatusRejected:
		message = "Document rejeté"
	case entity.StatusPending:
		message = "Document remis en attente"
	}
	response.OK(c, document, message)
}

func (h *ReviewHandler) ValidatePayment(c *gin.Context) {
	admin, id, ok := adminAndID(c, "id")
	if !ok {
		return
	}

	payment, err := h.service.ValidatePayment(c.Request.Context(), admin, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, payment, "Paiement validé")
}

func (h *ReviewHandler) RejectPayment(c *gin.Context) {
	admin, id, ok := adminAndID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	payment, err := h.service.RejectPayment(c.Request.Context(), admin, id, req.Reason)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, payment, "Paiement rejeté")
}

func (h *ReviewHandler) SearchCandidates(c *gin.Context) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, apperror.Validation("Recherche invalide", validator.FormatValidationErrors(err)...))
		return
	}

	res, err := h.service.SearchCandidates(c.Request.Context(), admin, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "")
}

func (h *ReviewHandler) SearchToken(c *gin.Context) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	token, err := h.service.SearchToken(admin)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, token, "")
}
