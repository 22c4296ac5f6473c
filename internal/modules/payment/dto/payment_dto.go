package dto

import (
	"gabconcours.ga/backend/internal/entity"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	Nupcan    string               `json:"nupcan"`
	Amount    decimal.Decimal      `json:"amount"`
	Method    entity.PaymentMethod `json:"method" binding:"required,oneof=airtel_money moov_money virement"`
	Reference string               `json:"reference" binding:"max=100"`
	ContestID string               `json:"contest_id" binding:"omitempty,uuid"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type PaymentFilter struct {
	Status        string `form:"status" binding:"omitempty,oneof=en_attente valide rejete"`
	InstitutionID string `form:"etablissement_id" binding:"omitempty,uuid"`
}
