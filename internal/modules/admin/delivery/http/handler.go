package handler

import (
	"gabconcours.ga/backend/internal/middleware"
	"gabconcours.ga/backend/internal/modules/admin/dto"
	admin "gabconcours.ga/backend/internal/modules/admin/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	authService       admin.AuthService
	managementService admin.ManagementService
}

func NewAdminHandler(authService admin.AuthService, managementService admin.ManagementService) *AdminHandler {
	return &AdminHandler{
		authService:       authService,
		managementService: managementService,
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}
	input.UserAgent = c.Request.UserAgent()

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "Connexion réussie")
}

func (h *AdminHandler) Me(c *gin.Context) {
	current, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	res, err := h.authService.Me(c.Request.Context(), current)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "")
}

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var input dto.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	current, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), current, input); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "Mot de passe modifié")
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	var filter dto.AdminFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, apperror.Validation("Filtre invalide", validator.FormatValidationErrors(err)...))
		return
	}

	res, err := h.managementService.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "")
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var input dto.CreateAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	creator, _ := middleware.CurrentAdmin(c)
	res, err := h.managementService.Create(c.Request.Context(), creator, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	message := "Administrateur créé, identifiants envoyés par email"
	if !res.EmailSent {
		message = "Administrateur créé, l'email d'identifiants n'a pas pu être envoyé"
	}
	response.Created(c, res, message)
}

func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return
	}

	var input dto.UpdateAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, apperror.Validation("Données invalides", validator.FormatValidationErrors(err)...))
		return
	}

	res, err := h.managementService.Update(c.Request.Context(), id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "Administrateur mis à jour")
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return
	}

	if err := h.managementService.Delete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "Administrateur supprimé")
}
