package dto

import (
	"io"

	"gabconcours.ga/backend/internal/entity"
)

// PhotoFile is the optional identity photo sent with a registration.
type PhotoFile struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

type RegisterInput struct {
	LastName             string `json:"last_name" form:"last_name" binding:"required,max=100"`
	FirstName            string `json:"first_name" form:"first_name" binding:"required,max=100"`
	Email                string `json:"email" form:"email" binding:"required,email"`
	Phone                string `json:"phone" form:"phone" binding:"required,max=30"`
	BirthDate            string `json:"birth_date" form:"birth_date" binding:"required,datetime=2006-01-02"`
	BirthPlace           string `json:"birth_place" form:"birth_place" binding:"required,max=100"`
	OriginProvinceID     string `json:"origin_province_id" form:"origin_province_id" binding:"omitempty,uuid"`
	CurrentProvinceID    string `json:"current_province_id" form:"current_province_id" binding:"omitempty,uuid"`
	AssignmentProvinceID string `json:"assignment_province_id" form:"assignment_province_id" binding:"omitempty,uuid"`
	NationalID           string `json:"national_id" form:"national_id" binding:"max=50"`
	ContestID            string `json:"contest_id" form:"contest_id" binding:"required,uuid"`
	TrackID              string `json:"track_id" form:"track_id" binding:"omitempty,uuid"`
}

type UpdateInput struct {
	LastName             *string `json:"last_name" form:"last_name" binding:"omitempty,max=100"`
	FirstName            *string `json:"first_name" form:"first_name" binding:"omitempty,max=100"`
	Email                *string `json:"email" form:"email" binding:"omitempty,email"`
	Phone                *string `json:"phone" form:"phone" binding:"omitempty,max=30"`
	BirthDate            *string `json:"birth_date" form:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	BirthPlace           *string `json:"birth_place" form:"birth_place" binding:"omitempty,max=100"`
	OriginProvinceID     *string `json:"origin_province_id" form:"origin_province_id" binding:"omitempty,uuid"`
	CurrentProvinceID    *string `json:"current_province_id" form:"current_province_id" binding:"omitempty,uuid"`
	AssignmentProvinceID *string `json:"assignment_province_id" form:"assignment_province_id" binding:"omitempty,uuid"`
	NationalID           *string `json:"national_id" form:"national_id" binding:"omitempty,max=50"`
}

type ListFilter struct {
	Search        string `form:"search"`
	InstitutionID string `form:"etablissement_id" binding:"omitempty,uuid"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type RegistrationResponse struct {
	Candidate     *entity.Candidate     `json:"candidate"`
	Participation *entity.Participation `json:"participation"`
	Nupcan        string                `json:"nupcan"`
}

type NupcanAvailability struct {
	Nupcan    string `json:"nupcan"`
	Available bool   `json:"available"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type CandidateListResponse struct {
	Data []entity.Candidate `json:"data"`
	Meta PaginationMeta     `json:"meta"`
}
