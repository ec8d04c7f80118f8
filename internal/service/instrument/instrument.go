package instrument

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

// Service publishes documents to customers
type Service struct {
	repo     repository.InstrumentRepo
	recorder auditRecorder
}

func NewService(repo repository.InstrumentRepo, recorder auditRecorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

type CreateInput struct {
	Title       string
	Type        models.InstrumentType
	Content     string
	Amount      *decimal.Decimal
	Currency    string
	Visibility  models.InstrumentVisibility
	RecipientID *uuid.UUID
}

func (in CreateInput) validate() error {
	if in.Amount != nil && (in.Amount.IsNegative() || !models.FitsScale(*in.Amount)) {
		return apperrors.ErrInvalidAmount
	}
	if in.Currency != "" && !models.IsSupportedCurrency(in.Currency) {
		return fmt.Errorf("currency %q: %w", in.Currency, apperrors.ErrInvalidValue)
	}
	if in.Visibility == models.InstrumentVisibleToRecipient && in.RecipientID == nil {
		return fmt.Errorf("recipient is required for specific visibility: %w", apperrors.ErrInvalidValue)
	}
	return nil
}

// Create publishes instrument, staff only
// Instruments for all never carry a recipient
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (models.Instrument, error) {
	if !actor.Role.IsStaff() {
		return models.Instrument{}, apperrors.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return models.Instrument{}, err
	}
	if in.Visibility == models.InstrumentVisibleToAll {
		in.RecipientID = nil
	}

	i, err := s.repo.CreateInstrument(ctx, models.Instrument{
		Title:       in.Title,
		Type:        in.Type,
		Content:     in.Content,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Visibility:  in.Visibility,
		RecipientID: in.RecipientID,
		Status:      models.InstrumentStatusActive,
		CreatedBy:   actor.UserID,
	})
	if err != nil {
		return i, fmt.Errorf("can't create instrument. Err: %w", err)
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditInstrumentCreated,
		Details: map[string]any{"instrument_id": i.ID.String()},
		After:   audit.Snapshot(i),
	})

	return i, nil
}

// ListVisible returns active instruments for all plus the ones addressed to actor
func (s *Service) ListVisible(ctx context.Context, actor models.Actor) ([]models.Instrument, error) {
	list, err := s.repo.ListInstruments(ctx, repository.ListInstrumentsOpts{VisibleTo: &actor.UserID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("can't list instruments. Err: %w", err)
	}
	return list, nil
}

// Get returns instrument if actor may read it
// Instruments addressed to somebody else look missing
func (s *Service) Get(ctx context.Context, actor models.Actor, instrumentID uuid.UUID) (models.Instrument, error) {
	i, err := s.repo.GetInstrument(ctx, instrumentID)
	if err != nil {
		return models.Instrument{}, err
	}
	if !actor.Role.IsStaff() && !i.VisibleTo(actor.UserID) {
		return models.Instrument{}, apperrors.ErrInstrumentNotFound
	}
	return i, nil
}

func (s *Service) ListAll(ctx context.Context, actor models.Actor) ([]models.Instrument, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.ErrUnauthorized
	}

	list, err := s.repo.ListInstruments(ctx, repository.ListInstrumentsOpts{})
	if err != nil {
		return nil, fmt.Errorf("can't list instruments. Err: %w", err)
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, actor models.Actor, instrumentID uuid.UUID) error {
	if !actor.Role.IsStaff() {
		return apperrors.ErrUnauthorized
	}

	i, err := s.repo.GetInstrument(ctx, instrumentID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteInstrument(ctx, instrumentID); err != nil {
		return err
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditInstrumentDeleted,
		Details: map[string]any{"instrument_id": instrumentID.String()},
		Before:  audit.Snapshot(i),
	})

	return nil
}
