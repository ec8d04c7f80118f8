package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/account"
	"github.com/nkiryanov/bankledger/internal/service/beneficiary"
	"github.com/nkiryanov/bankledger/internal/service/instrument"
	"github.com/nkiryanov/bankledger/internal/service/settings"
	"github.com/nkiryanov/bankledger/internal/service/ticket"
	"github.com/nkiryanov/bankledger/internal/service/transfer"
	"github.com/nkiryanov/bankledger/internal/service/user"
)

type MockAuth struct{ mock.Mock }

func (m *MockAuth) Login(ctx context.Context, email string, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *MockAuth) VerifyLogin(ctx context.Context, email string, code string) (models.IssuedToken, models.User, error) {
	args := m.Called(ctx, email, code)
	return args.Get(0).(models.IssuedToken), args.Get(1).(models.User), args.Error(2)
}

func (m *MockAuth) RequestOtp(ctx context.Context, actor models.Actor, purpose models.OtpPurpose) error {
	return m.Called(ctx, actor, purpose).Error(0)
}

func (m *MockAuth) Authenticate(ctx context.Context, access string) (models.Actor, error) {
	args := m.Called(ctx, access)
	return args.Get(0).(models.Actor), args.Error(1)
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) Register(ctx context.Context, in user.RegisterInput) (models.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUsers) CreateByAdmin(ctx context.Context, actor models.Actor, in user.RegisterInput) (models.User, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUsers) Me(ctx context.Context, actor models.Actor) (models.User, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUsers) Get(ctx context.Context, actor models.Actor, userID uuid.UUID) (models.User, error) {
	args := m.Called(ctx, actor, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUsers) List(ctx context.Context, actor models.Actor, opts user.ListOpts) ([]models.User, int, error) {
	args := m.Called(ctx, actor, opts)
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *MockUsers) Update(ctx context.Context, actor models.Actor, userID uuid.UUID, opts repository.UpdateUserOpts) (models.User, error) {
	args := m.Called(ctx, actor, userID, opts)
	return args.Get(0).(models.User), args.Error(1)
}

type MockAccounts struct{ mock.Mock }

func (m *MockAccounts) Create(ctx context.Context, actor models.Actor, in account.CreateInput) (models.Account, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Account), args.Error(1)
}

func (m *MockAccounts) ListOwn(ctx context.Context, actor models.Actor) ([]models.Account, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccounts) Get(ctx context.Context, actor models.Actor, accountID uuid.UUID) (models.Account, error) {
	args := m.Called(ctx, actor, accountID)
	return args.Get(0).(models.Account), args.Error(1)
}

func (m *MockAccounts) History(ctx context.Context, actor models.Actor, accountID uuid.UUID, opts account.HistoryOpts) ([]models.Transaction, error) {
	args := m.Called(ctx, actor, accountID, opts)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockAccounts) ListAll(ctx context.Context, actor models.Actor, offset int, limit int) ([]models.Account, error) {
	args := m.Called(ctx, actor, offset, limit)
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccounts) Dashboard(ctx context.Context, actor models.Actor) (models.Dashboard, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(models.Dashboard), args.Error(1)
}

type MockTransfers struct{ mock.Mock }

func (m *MockTransfers) Move(ctx context.Context, actor models.Actor, in transfer.MoveInput) (models.Transaction, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockTransfers) InitiateWire(ctx context.Context, actor models.Actor, in transfer.WireInput) (models.Transaction, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Transaction), args.Error(1)
}

type MockBeneficiaries struct{ mock.Mock }

func (m *MockBeneficiaries) Create(ctx context.Context, actor models.Actor, in beneficiary.CreateInput) (models.Beneficiary, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaries) List(ctx context.Context, actor models.Actor) ([]models.Beneficiary, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaries) Delete(ctx context.Context, actor models.Actor, beneficiaryID uuid.UUID) error {
	return m.Called(ctx, actor, beneficiaryID).Error(0)
}

type MockLifecycle struct{ mock.Mock }

func (m *MockLifecycle) Transition(ctx context.Context, actor models.Actor, transactionID uuid.UUID, to models.TransactionStatus, notes string) (models.Transaction, error) {
	args := m.Called(ctx, actor, transactionID, to, notes)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockLifecycle) List(ctx context.Context, actor models.Actor, opts repository.ListTransactionsOpts) ([]models.Transaction, int, error) {
	args := m.Called(ctx, actor, opts)
	return args.Get(0).([]models.Transaction), args.Int(1), args.Error(2)
}

type MockRedaction struct{ mock.Mock }

func (m *MockRedaction) Redact(ctx context.Context, actor models.Actor, transactionID uuid.UUID) error {
	return m.Called(ctx, actor, transactionID).Error(0)
}

type MockSettings struct{ mock.Mock }

func (m *MockSettings) Get(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockSettings) Update(ctx context.Context, actor models.Actor, in settings.UpdateInput) (models.Settings, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Settings), args.Error(1)
}

type MockAudit struct{ mock.Mock }

func (m *MockAudit) List(ctx context.Context, actor models.Actor, opts repository.ListAuditOpts) ([]models.AuditEntry, error) {
	args := m.Called(ctx, actor, opts)
	return args.Get(0).([]models.AuditEntry), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Send(ctx context.Context, identity string, code string, purpose models.OtpPurpose) bool {
	return m.Called(ctx, identity, code, purpose).Bool(0)
}

type MockInstruments struct{ mock.Mock }

func (m *MockInstruments) Create(ctx context.Context, actor models.Actor, in instrument.CreateInput) (models.Instrument, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Instrument), args.Error(1)
}

func (m *MockInstruments) ListVisible(ctx context.Context, actor models.Actor) ([]models.Instrument, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Instrument), args.Error(1)
}

func (m *MockInstruments) Get(ctx context.Context, actor models.Actor, instrumentID uuid.UUID) (models.Instrument, error) {
	args := m.Called(ctx, actor, instrumentID)
	return args.Get(0).(models.Instrument), args.Error(1)
}

func (m *MockInstruments) ListAll(ctx context.Context, actor models.Actor) ([]models.Instrument, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Instrument), args.Error(1)
}

func (m *MockInstruments) Delete(ctx context.Context, actor models.Actor, instrumentID uuid.UUID) error {
	return m.Called(ctx, actor, instrumentID).Error(0)
}

type MockTickets struct{ mock.Mock }

func (m *MockTickets) Create(ctx context.Context, actor models.Actor, in ticket.CreateInput) (models.Ticket, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Ticket), args.Error(1)
}

func (m *MockTickets) List(ctx context.Context, actor models.Actor) ([]models.Ticket, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Ticket), args.Error(1)
}

type MockContent struct{ mock.Mock }

func (m *MockContent) Get(ctx context.Context, kind models.ContentKind) (models.Content, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(models.Content), args.Error(1)
}

func (m *MockContent) Update(ctx context.Context, actor models.Actor, kind models.ContentKind, body string) (models.Content, error) {
	args := m.Called(ctx, actor, kind, body)
	return args.Get(0).(models.Content), args.Error(1)
}

func (m *MockContent) History(ctx context.Context, actor models.Actor, kind models.ContentKind) ([]models.Content, error) {
	args := m.Called(ctx, actor, kind)
	return args.Get(0).([]models.Content), args.Error(1)
}
