package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditUserRegistered            AuditAction = "user_registered"
	AuditLoginOtpRequested         AuditAction = "login_otp_requested"
	AuditLoginSuccessful           AuditAction = "login_successful"
	AuditInternalTransfer          AuditAction = "internal_transfer"
	AuditExternalTransferInitiated AuditAction = "external_transfer_initiated"
	AuditBeneficiaryCreated        AuditAction = "beneficiary_created"
	AuditBeneficiaryDeleted        AuditAction = "beneficiary_deleted"
	AuditCustomerUpdated           AuditAction = "customer_updated"
	AuditCustomerCreatedByAdmin    AuditAction = "customer_created_by_admin"
	AuditAccountCreated            AuditAction = "account_created"
	AuditTransferStatusUpdated     AuditAction = "transfer_status_updated"
	AuditTransactionRedacted       AuditAction = "transaction_redacted"
	AuditSettingsUpdated           AuditAction = "settings_updated"
	AuditInstrumentCreated         AuditAction = "instrument_created"
	AuditInstrumentDeleted         AuditAction = "instrument_deleted"
	AuditFundingInstructionsSaved  AuditAction = "funding_instructions_updated"
)

// Append only record of a mutating action
// Before and After are JSON snapshots of the affected entity, nil if not relevant
type AuditEntry struct {
	ID        uuid.UUID
	ActorID   *uuid.UUID
	Action    AuditAction
	Details   map[string]any
	Before    json.RawMessage
	After     json.RawMessage
	CreatedAt time.Time
}
