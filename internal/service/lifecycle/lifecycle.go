package lifecycle

import (
	"context"
	"fmt"

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

// Manager moves pending transactions to a terminal status
type Manager struct {
	storage  repository.Storage
	recorder auditRecorder
}

func New(storage repository.Storage, recorder auditRecorder) *Manager {
	return &Manager{storage: storage, recorder: recorder}
}

func (m *Manager) Transition(ctx context.Context, actor models.Actor, transactionID uuid.UUID, to models.TransactionStatus, notes string) (models.Transaction, error) {
	if !actor.Role.IsStaff() {
		return models.Transaction{}, apperrors.ErrUnauthorized
	}
	if !to.IsTerminal() {
		return models.Transaction{}, apperrors.ErrInvalidStateTransition
	}

	var before, after models.Transaction

	err := m.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		before, err = storage.Transaction().GetTransaction(ctx, transactionID, true)
		if err != nil {
			return err
		}
		if before.Status != models.TransactionStatusPending {
			return apperrors.ErrInvalidStateTransition
		}
		// Redacted rows are frozen, settling them would move balances behind a hidden entry
		if before.IsRedacted {
			return apperrors.ErrInvalidStateTransition
		}

		if deltas := settlementDeltas(before, to); deltas != nil {
			_, err = storage.Account().Adjust(ctx, models.BalanceAdjustment{AccountID: before.AccountID, Deltas: deltas})
			if err != nil {
				return err
			}
		}

		after, err = storage.Transaction().UpdateStatus(ctx, transactionID, models.TransactionStatusPending, to, notes)
		return err
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transition to %s failed: %w", to, err)
	}

	m.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditTransferStatusUpdated,
		Details: map[string]any{
			"transfer_id": transactionID.String(),
			"old_status":  string(before.Status),
			"new_status":  string(to),
		},
		Before: audit.Snapshot(before),
		After:  audit.Snapshot(after),
	})

	return after, nil
}

// settlementDeltas returns balance effect of leaving pending status, nil if there is none
// Outgoing wire holds funds in transit: settlement releases them, refusal returns them to available
func settlementDeltas(t models.Transaction, to models.TransactionStatus) map[models.Tier]decimal.Decimal {
	amount := t.Amount.Abs()

	switch t.Type {
	case models.TransactionTypeWireOut:
		if to.IsSettled() {
			return map[models.Tier]decimal.Decimal{models.TierTransit: amount.Neg()}
		}
		return map[models.Tier]decimal.Decimal{
			models.TierTransit:   amount.Neg(),
			models.TierAvailable: amount,
		}

	case models.TransactionTypeWireIn:
		// Incoming funds wait in transit until they are accepted
		if to.IsSettled() {
			return map[models.Tier]decimal.Decimal{
				models.TierTransit:   amount.Neg(),
				models.TierAvailable: amount,
			}
		}
		return map[models.Tier]decimal.Decimal{models.TierTransit: amount.Neg()}

	default:
		return nil
	}
}

// List returns transactions for staff, redacted included
func (m *Manager) List(ctx context.Context, actor models.Actor, opts repository.ListTransactionsOpts) ([]models.Transaction, int, error) {
	if !actor.Role.IsStaff() {
		return nil, 0, apperrors.ErrUnauthorized
	}
	opts.IncludeRedacted = true

	list, err := m.storage.Transaction().ListTransactions(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("can't list transfers. Err: %w", err)
	}
	total, err := m.storage.Transaction().CountTransactions(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("can't count transfers. Err: %w", err)
	}

	return list, total, nil
}
