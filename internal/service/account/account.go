package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/audit"
)

const (
	accountNumberDigits = 12
	numberAttempts      = 5

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

var numberSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(accountNumberDigits), nil)

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type Service struct {
	storage  repository.Storage
	recorder auditRecorder

	// Replaced in tests to force number collisions
	newNumber func() (string, error)
}

func NewService(storage repository.Storage, recorder auditRecorder) *Service {
	return &Service{
		storage:   storage,
		recorder:  recorder,
		newNumber: randomNumber,
	}
}

type CreateInput struct {
	UserID         uuid.UUID
	Type           models.AccountType
	Currency       string
	InitialBalance decimal.Decimal
}

// Create opens account for customer, staff only
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (models.Account, error) {
	if !actor.Role.IsStaff() {
		return models.Account{}, apperrors.ErrUnauthorized
	}
	if !models.IsSupportedCurrency(in.Currency) {
		return models.Account{}, fmt.Errorf("currency %q: %w", in.Currency, apperrors.ErrInvalidValue)
	}
	if in.InitialBalance.IsNegative() || !models.FitsScale(in.InitialBalance) {
		return models.Account{}, apperrors.ErrInvalidAmount
	}

	if _, err := s.storage.User().GetUserByID(ctx, in.UserID); err != nil {
		return models.Account{}, err
	}

	var (
		account models.Account
		err     error
	)
	for range numberAttempts {
		var number string
		number, err = s.newNumber()
		if err != nil {
			return account, fmt.Errorf("can't generate account number. Err: %w", err)
		}

		// Own transaction (savepoint when nested) so a taken number does not abort the outer one
		err = s.storage.InTx(ctx, func(storage repository.Storage) error {
			var err error
			account, err = storage.Account().CreateAccount(ctx, models.Account{
				UserID:        in.UserID,
				AccountNumber: number,
				Type:          in.Type,
				Currency:      in.Currency,
				Status:        models.AccountStatusActive,
				Balances:      models.Balances{Available: in.InitialBalance},
			})
			return err
		})
		if !errors.Is(err, apperrors.ErrDuplicateIdentity) {
			break
		}
	}
	if err != nil {
		return account, fmt.Errorf("can't create account. Err: %w", err)
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditAccountCreated,
		Details: map[string]any{
			"account_id": account.ID.String(),
			"user_id":    in.UserID.String(),
		},
	})

	return account, nil
}

// ListOwn returns accounts of the actor
func (s *Service) ListOwn(ctx context.Context, actor models.Actor) ([]models.Account, error) {
	accounts, err := s.storage.Account().ListAccounts(ctx, repository.ListAccountsOpts{UserID: &actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("can't list accounts. Err: %w", err)
	}
	return accounts, nil
}

// Get returns account visible to actor
// Account of somebody else is reported as not found to customers
func (s *Service) Get(ctx context.Context, actor models.Actor, accountID uuid.UUID) (models.Account, error) {
	account, err := s.storage.Account().GetAccount(ctx, accountID, false)
	if err != nil {
		return account, err
	}

	if account.UserID != actor.UserID && !actor.Role.IsStaff() {
		return models.Account{}, apperrors.ErrAccountNotFound
	}

	return account, nil
}

type HistoryOpts struct {
	Status models.TransactionStatus // filter by status if not empty
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

// History returns not redacted transactions of account, newest first
func (s *Service) History(ctx context.Context, actor models.Actor, accountID uuid.UUID, opts HistoryOpts) ([]models.Transaction, error) {
	if _, err := s.Get(ctx, actor, accountID); err != nil {
		return nil, err
	}

	listOpts := repository.ListTransactionsOpts{
		AccountID: &accountID,
		From:      opts.From,
		To:        opts.To,
		Offset:    max(opts.Offset, 0),
		Limit:     clampLimit(opts.Limit),
	}
	if opts.Status != "" {
		listOpts.Statuses = []models.TransactionStatus{opts.Status}
	}

	transactions, err := s.storage.Transaction().ListTransactions(ctx, listOpts)
	if err != nil {
		return nil, fmt.Errorf("can't list transactions. Err: %w", err)
	}

	return transactions, nil
}

// ListAll returns accounts of all customers, staff only
func (s *Service) ListAll(ctx context.Context, actor models.Actor, offset int, limit int) ([]models.Account, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.ErrUnauthorized
	}

	accounts, err := s.storage.Account().ListAccounts(ctx, repository.ListAccountsOpts{
		Offset: max(offset, 0),
		Limit:  clampLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("can't list accounts. Err: %w", err)
	}

	return accounts, nil
}

// Dashboard aggregates figures for staff overview
func (s *Service) Dashboard(ctx context.Context, actor models.Actor) (models.Dashboard, error) {
	var d models.Dashboard
	if !actor.Role.IsStaff() {
		return d, apperrors.ErrUnauthorized
	}

	var err error
	if d.TotalCustomers, err = s.storage.User().CountUsers(ctx, repository.ListUsersOpts{Role: models.RoleCustomer}); err != nil {
		return d, fmt.Errorf("can't count customers. Err: %w", err)
	}
	if d.ActiveCustomers, err = s.storage.User().CountUsers(ctx, repository.ListUsersOpts{Role: models.RoleCustomer, Status: models.UserStatusActive}); err != nil {
		return d, fmt.Errorf("can't count active customers. Err: %w", err)
	}
	if d.PendingTransfers, err = s.storage.Transaction().CountTransactions(ctx, repository.ListTransactionsOpts{
		Statuses:        []models.TransactionStatus{models.TransactionStatusPending},
		IncludeRedacted: true,
	}); err != nil {
		return d, fmt.Errorf("can't count pending transfers. Err: %w", err)
	}
	if d.TotalAccounts, err = s.storage.Account().CountAccounts(ctx); err != nil {
		return d, fmt.Errorf("can't count accounts. Err: %w", err)
	}
	if d.BalanceByCurrency, err = s.storage.Account().BalanceByCurrency(ctx); err != nil {
		return d, fmt.Errorf("can't sum balances. Err: %w", err)
	}

	return d, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}

func randomNumber() (string, error) {
	n, err := rand.Int(rand.Reader, numberSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", accountNumberDigits, n), nil
}
