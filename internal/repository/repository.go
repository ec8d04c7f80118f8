package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/bankledger/internal/models"
)

// Storage aggregates repositories sharing one database handle
type Storage interface {
	User() UserRepo
	Account() AccountRepo
	Transaction() TransactionRepo
	Otp() OtpRepo
	Beneficiary() BeneficiaryRepo
	Audit() AuditRepo
	Settings() SettingsRepo
	Instrument() InstrumentRepo
	Ticket() TicketRepo
	Content() ContentRepo

	// Run fn in database transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

type ListUsersOpts struct {
	Role   models.Role       // filter by role if not empty
	Status models.UserStatus // filter by status if not empty
	Offset int
	Limit  int
}

// Fields to update, nil fields are left unchanged
type UpdateUserOpts struct {
	Status    *models.UserStatus
	KycStatus *models.KycStatus
	Notes     *string
}

type UserRepo interface {
	// Create user
	// If user with the same email exists has to return apperrors.ErrDuplicateIdentity
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// If user not found must return apperrors.ErrUserNotFound
	UpdateUser(ctx context.Context, userID uuid.UUID, opts UpdateUserOpts) (models.User, error)

	// Sorted by creation time, newest first
	ListUsers(ctx context.Context, opts ListUsersOpts) ([]models.User, error)
	CountUsers(ctx context.Context, opts ListUsersOpts) (int, error)
}

type ListAccountsOpts struct {
	UserID *uuid.UUID // filter by owner if set
	Offset int
	Limit  int
}

// Balance Store
// The only way to mutate balance tiers of accounts
type AccountRepo interface {
	// Create account with balances from account.Balances
	// If account number is taken has to return apperrors.ErrDuplicateIdentity
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)

	// If account not found must return apperrors.ErrAccountNotFound
	// forUpdate locks the row until the end of current transaction
	GetAccount(ctx context.Context, accountID uuid.UUID, forUpdate bool) (models.Account, error)

	ListAccounts(ctx context.Context, opts ListAccountsOpts) ([]models.Account, error)
	CountAccounts(ctx context.Context) (int, error)

	// Apply all adjustments or none of them
	// Returns accounts after adjustment in the same order as adjustments were given (merged by account)
	// If any tier would become negative has to return apperrors.ErrInsufficientFunds
	// If any account not found has to return apperrors.ErrAccountNotFound
	Adjust(ctx context.Context, adjustments ...models.BalanceAdjustment) ([]models.Account, error)

	// Sum of available balance grouped by currency
	BalanceByCurrency(ctx context.Context) ([]models.CurrencyTotal, error)
}

type ListTransactionsOpts struct {
	AccountID       *uuid.UUID
	Statuses        []models.TransactionStatus
	From            *time.Time
	To              *time.Time
	IncludeRedacted bool
	Offset          int
	Limit           int
}

type TransactionRepo interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)

	// If transaction not found must return apperrors.ErrTransactionNotFound
	GetTransaction(ctx context.Context, transactionID uuid.UUID, forUpdate bool) (models.Transaction, error)

	// Sorted by creation time, newest first
	ListTransactions(ctx context.Context, opts ListTransactionsOpts) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, opts ListTransactionsOpts) (int, error)

	// Move transaction from status 'from' to status 'to'
	// If transaction is not in 'from' status has to return apperrors.ErrInvalidStateTransition
	UpdateStatus(ctx context.Context, transactionID uuid.UUID, from, to models.TransactionStatus, notes string) (models.Transaction, error)

	// Set redaction flag once
	// If transaction is already redacted has to return apperrors.ErrAlreadyRedacted
	MarkRedacted(ctx context.Context, transactionID uuid.UUID, redactedBy uuid.UUID, at time.Time) (models.Transaction, error)

	// References of internal transfers that do not have exactly one debit and one credit leg
	ListUnpairedReferences(ctx context.Context) ([]string, error)
}

type OtpRepo interface {
	CreateChallenge(ctx context.Context, challenge models.OtpChallenge) (models.OtpChallenge, error)

	// Return newest challenge for identity and purpose, used or not
	// If there is no challenge has to return apperrors.ErrOtpNoChallenge
	GetLatestChallenge(ctx context.Context, identity string, purpose models.OtpPurpose, forUpdate bool) (models.OtpChallenge, error)

	IncrementAttempts(ctx context.Context, challengeID uuid.UUID) (attempts int, err error)

	// Mark challenge as used
	// If challenge is used already has to return apperrors.ErrOtpNoChallenge
	MarkUsed(ctx context.Context, challengeID uuid.UUID) error
}

type BeneficiaryRepo interface {
	CreateBeneficiary(ctx context.Context, b models.Beneficiary) (models.Beneficiary, error)

	// Return beneficiary owned by user
	// If not found or owned by somebody else must return apperrors.ErrBeneficiaryNotFound
	GetBeneficiary(ctx context.Context, beneficiaryID uuid.UUID, userID uuid.UUID) (models.Beneficiary, error)

	ListBeneficiaries(ctx context.Context, userID uuid.UUID) ([]models.Beneficiary, error)

	// If not found or owned by somebody else must return apperrors.ErrBeneficiaryNotFound
	DeleteBeneficiary(ctx context.Context, beneficiaryID uuid.UUID, userID uuid.UUID) error
}

type ListAuditOpts struct {
	Action  models.AuditAction // filter by action if not empty
	ActorID *uuid.UUID
	Offset  int
	Limit   int
}

type AuditRepo interface {
	CreateEntry(ctx context.Context, entry models.AuditEntry) error

	// Sorted by creation time, newest first
	ListEntries(ctx context.Context, opts ListAuditOpts) ([]models.AuditEntry, error)
}

type SettingsRepo interface {
	// If settings were never saved has to return apperrors.ErrSettingsNotFound
	GetSettings(ctx context.Context) (models.Settings, error)

	SaveSettings(ctx context.Context, s models.Settings) (models.Settings, error)
}

type ListInstrumentsOpts struct {
	VisibleTo  *uuid.UUID // instruments for all plus the ones addressed to the user, if set
	ActiveOnly bool
}

type InstrumentRepo interface {
	// If recipient does not exist has to return apperrors.ErrUserNotFound
	CreateInstrument(ctx context.Context, instrument models.Instrument) (models.Instrument, error)

	// If instrument not found must return apperrors.ErrInstrumentNotFound
	GetInstrument(ctx context.Context, instrumentID uuid.UUID) (models.Instrument, error)
	DeleteInstrument(ctx context.Context, instrumentID uuid.UUID) error

	// Newest first
	ListInstruments(ctx context.Context, opts ListInstrumentsOpts) ([]models.Instrument, error)
}

type TicketRepo interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error)

	// Newest first
	ListTickets(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error)
}

type ContentRepo interface {
	// If nothing saved for kind yet has to return apperrors.ErrContentNotFound
	GetContent(ctx context.Context, kind models.ContentKind, forUpdate bool) (models.Content, error)

	// Insert or replace current version of kind
	SaveContent(ctx context.Context, content models.Content) (models.Content, error)

	// Keep superseded version in history
	ArchiveContent(ctx context.Context, content models.Content) error

	// Superseded versions of kind, newest first
	ListContentVersions(ctx context.Context, kind models.ContentKind) ([]models.Content, error)
}
