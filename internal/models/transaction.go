package models

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeWireOut     TransactionType = "wire_out"
	TransactionTypeWireIn      TransactionType = "wire_in"
	TransactionTypeAdjustment  TransactionType = "adjustment"
)

func ParseTransactionType(s string) (TransactionType, error) {
	return parseEnum("transaction type", s,
		TransactionTypeDeposit,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
		TransactionTypeWireOut,
		TransactionTypeWireIn,
		TransactionTypeAdjustment,
	)
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusRejected  TransactionStatus = "rejected"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	return parseEnum("transaction status", s,
		TransactionStatusPending,
		TransactionStatusCompleted,
		TransactionStatusApproved,
		TransactionStatusRejected,
		TransactionStatusCancelled,
	)
}

// Settled means funds reached the counterparty
func (s TransactionStatus) IsSettled() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusApproved
}

// Abandoned means funds have to be returned to the account
func (s TransactionStatus) IsAbandoned() bool {
	return s == TransactionStatusRejected || s == TransactionStatusCancelled
}

func (s TransactionStatus) IsTerminal() bool {
	return s.IsSettled() || s.IsAbandoned()
}

// Ledger entry. Negative amount is a debit, positive is a credit
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	AccountID     uuid.UUID         `json:"account_id"`
	Type          TransactionType   `json:"transaction_type"`
	Status        TransactionStatus `json:"status"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description"`
	Reference     string            `json:"reference"`
	Counterparty  string            `json:"counterparty"`
	BeneficiaryID *uuid.UUID        `json:"beneficiary_id,omitempty"`
	Notes         string            `json:"notes"`
	IsRedacted    bool              `json:"is_redacted"`
	RedactedBy    *uuid.UUID        `json:"redacted_by,omitempty"`
	RedactedAt    *time.Time        `json:"redacted_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

const referencePrefix = "PB"

// NewReference returns code shared by all legs of one money movement: PB + date + 8 hex chars
func NewReference(now time.Time) string {
	id := uuid.New()
	return referencePrefix + now.UTC().Format("20060102") + strings.ToUpper(hex.EncodeToString(id[:4]))
}
