package dto

import (
	"github.com/shopspring/decimal"
)

type PaymentStats struct {
	Total           int64           `json:"total"`
	Validated       int64           `json:"validated"`
	Pending         int64           `json:"pending"`
	ValidatedAmount decimal.Decimal `json:"validated_amount"`
}

type DocumentStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"en_attente"`
	Validated int64 `json:"valide"`
	Rejected  int64 `json:"rejete"`
}

type Statistics struct {
	InstitutionID  string           `json:"institution_id,omitempty"`
	Candidates     int64            `json:"candidates"`
	OpenContests   int64            `json:"open_contests"`
	Payments       PaymentStats     `json:"payments"`
	Documents      DocumentStats    `json:"documents"`
	Participations map[string]int64 `json:"participations"`
}
