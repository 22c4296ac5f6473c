package dto

import (
	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`

	// UserAgent is filled from the request header by the handler.
	UserAgent string `json:"-"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	Admin       *entity.Admin `json:"admin"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type AdminFilter struct {
	Role          string `form:"role" binding:"omitempty,oneof=super_admin admin_etablissement"`
	InstitutionID string `form:"etablissement_id" binding:"omitempty,uuid"`
}

type CreateAdminInput struct {
	LastName      string    `json:"last_name" binding:"required,max=100"`
	FirstName     string    `json:"first_name" binding:"required,max=100"`
	Email         string    `json:"email" binding:"required,email"`
	InstitutionID uuid.UUID `json:"institution_id" binding:"required"`
}

type UpdateAdminInput struct {
	LastName      *string    `json:"last_name" binding:"omitempty,max=100"`
	FirstName     *string    `json:"first_name" binding:"omitempty,max=100"`
	Email         *string    `json:"email" binding:"omitempty,email"`
	InstitutionID *uuid.UUID `json:"institution_id"`
	Active        *bool      `json:"active"`
}

type CreateAdminResponse struct {
	Admin     *entity.Admin `json:"admin"`
	EmailSent bool          `json:"email_sent"`
}
