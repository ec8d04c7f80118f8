package redaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/audit"
)

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Manager reverses ledger entries on behalf of super admins
// Redacted entry stays in the ledger and is hidden from customer history only
type Manager struct {
	storage  repository.Storage
	recorder auditRecorder

	now func() time.Time
}

func New(storage repository.Storage, recorder auditRecorder) *Manager {
	return &Manager{
		storage:  storage,
		recorder: recorder,
		now:      time.Now,
	}
}

func (m *Manager) Redact(ctx context.Context, actor models.Actor, transactionID uuid.UUID) error {
	if actor.Role != models.RoleSuperAdmin {
		return apperrors.ErrUnauthorized
	}

	var before, after models.Transaction

	err := m.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		before, err = storage.Transaction().GetTransaction(ctx, transactionID, true)
		if err != nil {
			return err
		}
		if before.IsRedacted {
			return apperrors.ErrAlreadyRedacted
		}

		// Only completed entries have moved available funds
		if before.Status == models.TransactionStatusCompleted {
			_, err = storage.Account().Adjust(ctx, models.BalanceAdjustment{
				AccountID: before.AccountID,
				Deltas:    map[models.Tier]decimal.Decimal{models.TierAvailable: before.Amount.Neg()},
			})
			if err != nil {
				return err
			}
		}

		after, err = storage.Transaction().MarkRedacted(ctx, transactionID, actor.UserID, m.now())
		return err
	})
	if err != nil {
		return fmt.Errorf("redaction failed: %w", err)
	}

	m.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditTransactionRedacted,
		Details: map[string]any{
			"transaction_id":  transactionID.String(),
			"original_amount": before.Amount.String(),
		},
		Before: audit.Snapshot(before),
		After:  audit.Snapshot(after),
	})

	return nil
}
