package transfer

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

const (
	defaultOutDescription = "Internal transfer"
	defaultInDescription  = "Internal transfer received"
)

type otpVerifier interface {
	Verify(ctx context.Context, identity string, purpose models.OtpPurpose, code string) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// Orchestrator moves money between accounts
// Balances and ledger legs of one movement are committed together or not at all
type Orchestrator struct {
	storage  repository.Storage
	otp      otpVerifier
	recorder auditRecorder

	now func() time.Time
}

func New(storage repository.Storage, otp otpVerifier, recorder auditRecorder) *Orchestrator {
	return &Orchestrator{
		storage:  storage,
		otp:      otp,
		recorder: recorder,
		now:      time.Now,
	}
}

type MoveInput struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Description   string
}

// Move transfers funds between two accounts of the bank
// Returns the debit leg
func (o *Orchestrator) Move(ctx context.Context, actor models.Actor, in MoveInput) (models.Transaction, error) {
	if !in.Amount.IsPositive() || !models.FitsScale(in.Amount) {
		return models.Transaction{}, apperrors.ErrInvalidAmount
	}
	if in.FromAccountID == in.ToAccountID {
		return models.Transaction{}, apperrors.ErrSameAccount
	}

	var debit models.Transaction
	reference := models.NewReference(o.now())

	err := o.storage.InTx(ctx, func(storage repository.Storage) error {
		from, err := storage.Account().GetAccount(ctx, in.FromAccountID, false)
		if err != nil {
			return err
		}
		to, err := storage.Account().GetAccount(ctx, in.ToAccountID, false)
		if err != nil {
			return err
		}

		if from.UserID != actor.UserID {
			return apperrors.ErrUnauthorized
		}
		if err := checkUsable(from, in.Currency); err != nil {
			return err
		}
		if err := checkUsable(to, in.Currency); err != nil {
			return err
		}

		_, err = storage.Account().Adjust(ctx,
			models.BalanceAdjustment{AccountID: from.ID, Deltas: map[models.Tier]decimal.Decimal{models.TierAvailable: in.Amount.Neg()}},
			models.BalanceAdjustment{AccountID: to.ID, Deltas: map[models.Tier]decimal.Decimal{models.TierAvailable: in.Amount}},
		)
		if err != nil {
			return err
		}

		debit, err = storage.Transaction().CreateTransaction(ctx, models.Transaction{
			AccountID:    from.ID,
			Type:         models.TransactionTypeTransferOut,
			Status:       models.TransactionStatusCompleted,
			Amount:       in.Amount.Neg(),
			Currency:     in.Currency,
			Description:  orDefault(in.Description, defaultOutDescription),
			Reference:    reference,
			Counterparty: to.AccountNumber,
		})
		if err != nil {
			return err
		}

		_, err = storage.Transaction().CreateTransaction(ctx, models.Transaction{
			AccountID:    to.ID,
			Type:         models.TransactionTypeTransferIn,
			Status:       models.TransactionStatusCompleted,
			Amount:       in.Amount,
			Currency:     in.Currency,
			Description:  orDefault(in.Description, defaultInDescription),
			Reference:    reference,
			Counterparty: from.AccountNumber,
		})
		return err
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("internal transfer failed: %w", err)
	}

	o.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditInternalTransfer,
		Details: map[string]any{
			"reference":       reference,
			"from_account_id": in.FromAccountID.String(),
			"to_account_id":   in.ToAccountID.String(),
			"amount":          in.Amount.String(),
			"currency":        in.Currency,
		},
	})

	return debit, nil
}

type WireInput struct {
	FromAccountID uuid.UUID
	BeneficiaryID uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Description   string
	OtpCode       string
}

// InitiateWire earmarks funds for an outgoing wire, status stays pending until staff decides
// Transfer purpose OTP is consumed first, even if the wire is refused later
func (o *Orchestrator) InitiateWire(ctx context.Context, actor models.Actor, in WireInput) (models.Transaction, error) {
	if !in.Amount.IsPositive() || !models.FitsScale(in.Amount) {
		return models.Transaction{}, apperrors.ErrInvalidAmount
	}

	if err := o.otp.Verify(ctx, actor.Email, models.OtpPurposeTransfer, in.OtpCode); err != nil {
		return models.Transaction{}, fmt.Errorf("otp verification failed: %w", err)
	}

	var wire models.Transaction
	reference := models.NewReference(o.now())

	err := o.storage.InTx(ctx, func(storage repository.Storage) error {
		from, err := storage.Account().GetAccount(ctx, in.FromAccountID, false)
		if err != nil {
			return err
		}
		if from.UserID != actor.UserID {
			return apperrors.ErrUnauthorized
		}
		if err := checkUsable(from, in.Currency); err != nil {
			return err
		}

		beneficiary, err := storage.Beneficiary().GetBeneficiary(ctx, in.BeneficiaryID, actor.UserID)
		if err != nil {
			return err
		}

		_, err = storage.Account().Adjust(ctx, models.BalanceAdjustment{
			AccountID: from.ID,
			Deltas: map[models.Tier]decimal.Decimal{
				models.TierAvailable: in.Amount.Neg(),
				models.TierTransit:   in.Amount,
			},
		})
		if err != nil {
			return err
		}

		wire, err = storage.Transaction().CreateTransaction(ctx, models.Transaction{
			AccountID:     from.ID,
			Type:          models.TransactionTypeWireOut,
			Status:        models.TransactionStatusPending,
			Amount:        in.Amount.Neg(),
			Currency:      in.Currency,
			Description:   orDefault(in.Description, "Wire to "+beneficiary.Name),
			Reference:     reference,
			Counterparty:  beneficiary.Name,
			BeneficiaryID: &beneficiary.ID,
		})
		return err
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("external transfer failed: %w", err)
	}

	o.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditExternalTransferInitiated,
		Details: map[string]any{
			"reference":       reference,
			"transaction_id":  wire.ID.String(),
			"from_account_id": in.FromAccountID.String(),
			"beneficiary_id":  in.BeneficiaryID.String(),
			"amount":          in.Amount.String(),
			"currency":        in.Currency,
		},
	})

	return wire, nil
}

func checkUsable(a models.Account, currency string) error {
	if a.Status != models.AccountStatusActive {
		return apperrors.ErrAccountInactive
	}
	if a.Currency != currency {
		return apperrors.ErrCurrencyMismatch
	}
	return nil
}

func orDefault(s string, def string) string {
	if s == "" {
		return def
	}
	return s
}
