package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkiryanov/bankledger/internal/handlers/middleware"
	"github.com/nkiryanov/bankledger/internal/logger"
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

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Services the router dispatches to
type Services struct {
	Auth        authService
	Users       userService
	Accounts    accountService
	Transfers   transferService
	Beneficiary beneficiaryService
	Lifecycle   lifecycleService
	Redaction   redactionService
	Settings    settingsService
	Audit       auditService
	Notifier    notifier
	Instruments instrumentService
	Tickets     ticketService
	Content     contentService
}

func NewRouter(s Services, logger logger.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(s.Auth)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}
	withStaff := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)(h))
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", handleRegister(s.Users, logger))
	mux.Handle("POST /api/auth/login", handleLogin(s.Auth, logger))
	mux.Handle("POST /api/auth/verify-otp", handleVerifyOtp(s.Auth, logger))
	mux.Handle("POST /api/auth/request-otp", withAuth(handleRequestOtp(s.Auth, logger)))
	mux.Handle("GET /api/auth/me", withAuth(handleMe(s.Users, logger)))

	mux.Handle("GET /api/accounts", withAuth(handleListAccounts(s.Accounts, logger)))
	mux.Handle("GET /api/accounts/{id}", withAuth(handleGetAccount(s.Accounts, logger)))
	mux.Handle("GET /api/accounts/{id}/transactions", withAuth(handleAccountHistory(s.Accounts, logger)))

	mux.Handle("POST /api/transfers/internal", withAuth(handleInternalTransfer(s.Transfers, logger)))
	mux.Handle("POST /api/transfers/external", withAuth(handleExternalTransfer(s.Transfers, logger)))

	mux.Handle("GET /api/beneficiaries", withAuth(handleListBeneficiaries(s.Beneficiary, logger)))
	mux.Handle("POST /api/beneficiaries", withAuth(handleCreateBeneficiary(s.Beneficiary, logger)))
	mux.Handle("DELETE /api/beneficiaries/{id}", withAuth(handleDeleteBeneficiary(s.Beneficiary, logger)))

	mux.Handle("GET /api/instruments", withAuth(handleListInstruments(s.Instruments, logger)))
	mux.Handle("GET /api/instruments/{id}", withAuth(handleGetInstrument(s.Instruments, logger)))

	mux.Handle("GET /api/tickets", withAuth(handleListTickets(s.Tickets, logger)))
	mux.Handle("POST /api/tickets", withAuth(handleCreateTicket(s.Tickets, logger)))

	mux.Handle("GET /api/content/funding-instructions", handleGetFundingInstructions(s.Content, logger))

	mux.Handle("GET /api/admin/dashboard", withStaff(handleDashboard(s.Accounts, logger)))
	mux.Handle("GET /api/admin/customers", withStaff(handleListCustomers(s.Users, logger)))
	mux.Handle("POST /api/admin/customers", withStaff(handleCreateCustomer(s.Users, logger)))
	mux.Handle("GET /api/admin/customers/{id}", withStaff(handleGetCustomer(s.Users, logger)))
	mux.Handle("PUT /api/admin/customers/{id}", withStaff(handleUpdateCustomer(s.Users, logger)))
	mux.Handle("GET /api/admin/accounts", withStaff(handleListAllAccounts(s.Accounts, logger)))
	mux.Handle("POST /api/admin/accounts", withStaff(handleCreateAccount(s.Accounts, logger)))
	mux.Handle("GET /api/admin/transfers", withStaff(handleListTransfers(s.Lifecycle, logger)))
	mux.Handle("PUT /api/admin/transfers/{id}", withStaff(handleUpdateTransfer(s.Lifecycle, logger)))
	mux.Handle("POST /api/admin/transactions/{id}/redact", withStaff(handleRedact(s.Redaction, logger)))
	mux.Handle("GET /api/admin/settings", withStaff(handleGetSettings(s.Settings, logger)))
	mux.Handle("PUT /api/admin/settings", withStaff(handleUpdateSettings(s.Settings, logger)))
	mux.Handle("POST /api/admin/settings/test-email", withStaff(handleTestEmail(s.Notifier)))
	mux.Handle("GET /api/admin/audit-logs", withStaff(handleListAudit(s.Audit, logger)))
	mux.Handle("GET /api/admin/instruments", withStaff(handleListAllInstruments(s.Instruments, logger)))
	mux.Handle("POST /api/admin/instruments", withStaff(handleCreateInstrument(s.Instruments, logger)))
	mux.Handle("DELETE /api/admin/instruments/{id}", withStaff(handleDeleteInstrument(s.Instruments, logger)))
	mux.Handle("PUT /api/admin/content/funding-instructions", withStaff(handleUpdateFundingInstructions(s.Content, logger)))
	mux.Handle("GET /api/admin/content/funding-instructions/history", withStaff(handleFundingInstructionsHistory(s.Content, logger)))

	mux.Handle("GET /metrics", promhttp.Handler())

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
		middleware.MetricsMiddleware(),
	)

	return handler
}

type authService interface {
	// Check password and send login otp
	// Has to return apperrors.ErrInvalidCredentials if email or password is wrong
	Login(ctx context.Context, email string, password string) error

	// Consume login otp and issue access token
	VerifyLogin(ctx context.Context, email string, code string) (models.IssuedToken, models.User, error)

	// Send otp for purpose to the actor email
	RequestOtp(ctx context.Context, actor models.Actor, purpose models.OtpPurpose) error

	// Resolve access token to actor
	Authenticate(ctx context.Context, access string) (models.Actor, error)
}

type userService interface {
	// Has to return apperrors.ErrDuplicateIdentity if email is taken
	Register(ctx context.Context, in user.RegisterInput) (models.User, error)
	CreateByAdmin(ctx context.Context, actor models.Actor, in user.RegisterInput) (models.User, error)
	Me(ctx context.Context, actor models.Actor) (models.User, error)
	Get(ctx context.Context, actor models.Actor, userID uuid.UUID) (models.User, error)
	List(ctx context.Context, actor models.Actor, opts user.ListOpts) ([]models.User, int, error)
	Update(ctx context.Context, actor models.Actor, userID uuid.UUID, opts repository.UpdateUserOpts) (models.User, error)
}

type accountService interface {
	Create(ctx context.Context, actor models.Actor, in account.CreateInput) (models.Account, error)
	ListOwn(ctx context.Context, actor models.Actor) ([]models.Account, error)
	Get(ctx context.Context, actor models.Actor, accountID uuid.UUID) (models.Account, error)
	History(ctx context.Context, actor models.Actor, accountID uuid.UUID, opts account.HistoryOpts) ([]models.Transaction, error)
	ListAll(ctx context.Context, actor models.Actor, offset int, limit int) ([]models.Account, error)
	Dashboard(ctx context.Context, actor models.Actor) (models.Dashboard, error)
}

type transferService interface {
	Move(ctx context.Context, actor models.Actor, in transfer.MoveInput) (models.Transaction, error)
	InitiateWire(ctx context.Context, actor models.Actor, in transfer.WireInput) (models.Transaction, error)
}

type beneficiaryService interface {
	Create(ctx context.Context, actor models.Actor, in beneficiary.CreateInput) (models.Beneficiary, error)
	List(ctx context.Context, actor models.Actor) ([]models.Beneficiary, error)
	Delete(ctx context.Context, actor models.Actor, beneficiaryID uuid.UUID) error
}

type lifecycleService interface {
	Transition(ctx context.Context, actor models.Actor, transactionID uuid.UUID, to models.TransactionStatus, notes string) (models.Transaction, error)
	List(ctx context.Context, actor models.Actor, opts repository.ListTransactionsOpts) ([]models.Transaction, int, error)
}

type redactionService interface {
	Redact(ctx context.Context, actor models.Actor, transactionID uuid.UUID) error
}

type settingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, actor models.Actor, in settings.UpdateInput) (models.Settings, error)
}

type auditService interface {
	List(ctx context.Context, actor models.Actor, opts repository.ListAuditOpts) ([]models.AuditEntry, error)
}

type instrumentService interface {
	Create(ctx context.Context, actor models.Actor, in instrument.CreateInput) (models.Instrument, error)
	ListVisible(ctx context.Context, actor models.Actor) ([]models.Instrument, error)
	// Has to return apperrors.ErrInstrumentNotFound if actor may not see it
	Get(ctx context.Context, actor models.Actor, instrumentID uuid.UUID) (models.Instrument, error)
	ListAll(ctx context.Context, actor models.Actor) ([]models.Instrument, error)
	Delete(ctx context.Context, actor models.Actor, instrumentID uuid.UUID) error
}

type ticketService interface {
	Create(ctx context.Context, actor models.Actor, in ticket.CreateInput) (models.Ticket, error)
	List(ctx context.Context, actor models.Actor) ([]models.Ticket, error)
}

type contentService interface {
	Get(ctx context.Context, kind models.ContentKind) (models.Content, error)
	Update(ctx context.Context, actor models.Actor, kind models.ContentKind, body string) (models.Content, error)
	History(ctx context.Context, actor models.Actor, kind models.ContentKind) ([]models.Content, error)
}

type notifier interface {
	Send(ctx context.Context, identity string, code string, purpose models.OtpPurpose) bool
}
