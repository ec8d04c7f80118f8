package beneficiary

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/audit"
)

type otpVerifier interface {
	Verify(ctx context.Context, identity string, purpose models.OtpPurpose, code string) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type Service struct {
	repo     repository.BeneficiaryRepo
	otp      otpVerifier
	recorder auditRecorder
}

func NewService(repo repository.BeneficiaryRepo, otp otpVerifier, recorder auditRecorder) *Service {
	return &Service{repo: repo, otp: otp, recorder: recorder}
}

type CreateInput struct {
	Name          string
	BankName      string
	AccountNumber string
	RoutingNumber string
	SwiftCode     string
	Type          models.BeneficiaryType
	OtpCode       string
}

// Create saves counterparty after the actor confirmed it with beneficiary otp
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (models.Beneficiary, error) {
	if err := s.otp.Verify(ctx, actor.Email, models.OtpPurposeBeneficiary, in.OtpCode); err != nil {
		return models.Beneficiary{}, err
	}

	b, err := s.repo.CreateBeneficiary(ctx, models.Beneficiary{
		UserID:        actor.UserID,
		Name:          in.Name,
		BankName:      in.BankName,
		AccountNumber: in.AccountNumber,
		RoutingNumber: in.RoutingNumber,
		SwiftCode:     in.SwiftCode,
		Type:          in.Type,
		Status:        models.BeneficiaryStatusActive,
	})
	if err != nil {
		return b, fmt.Errorf("can't create beneficiary. Err: %w", err)
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditBeneficiaryCreated,
		Details: map[string]any{"beneficiary_id": b.ID.String()},
		After:   audit.Snapshot(b),
	})

	return b, nil
}

func (s *Service) List(ctx context.Context, actor models.Actor) ([]models.Beneficiary, error) {
	list, err := s.repo.ListBeneficiaries(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("can't list beneficiaries. Err: %w", err)
	}
	return list, nil
}

// Delete removes own beneficiary for good
func (s *Service) Delete(ctx context.Context, actor models.Actor, beneficiaryID uuid.UUID) error {
	b, err := s.repo.GetBeneficiary(ctx, beneficiaryID, actor.UserID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBeneficiary(ctx, beneficiaryID, actor.UserID); err != nil {
		return err
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditBeneficiaryDeleted,
		Details: map[string]any{"beneficiary_id": beneficiaryID.String()},
		Before:  audit.Snapshot(b),
	})

	return nil
}
