package models

import (
	"time"

	"github.com/google/uuid"
)

type BeneficiaryType string

const (
	BeneficiaryTypeInternal BeneficiaryType = "internal"
	BeneficiaryTypeExternal BeneficiaryType = "external"
)

func ParseBeneficiaryType(s string) (BeneficiaryType, error) {
	return parseEnum("beneficiary type", s, BeneficiaryTypeInternal, BeneficiaryTypeExternal)
}

const BeneficiaryStatusActive = "active"

// Saved counterparty account a customer may wire funds to
type Beneficiary struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	RoutingNumber string          `json:"routing_number"`
	SwiftCode     string          `json:"swift_code"`
	Type          BeneficiaryType `json:"beneficiary_type"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
