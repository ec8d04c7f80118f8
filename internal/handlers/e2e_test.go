package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/bankledger/internal/handlers"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository/postgres"
	"github.com/nkiryanov/bankledger/internal/service/account"
	"github.com/nkiryanov/bankledger/internal/service/audit"
	"github.com/nkiryanov/bankledger/internal/service/auth"
	"github.com/nkiryanov/bankledger/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/bankledger/internal/service/beneficiary"
	"github.com/nkiryanov/bankledger/internal/service/content"
	"github.com/nkiryanov/bankledger/internal/service/instrument"
	"github.com/nkiryanov/bankledger/internal/service/lifecycle"
	"github.com/nkiryanov/bankledger/internal/service/otp"
	"github.com/nkiryanov/bankledger/internal/service/redaction"
	"github.com/nkiryanov/bankledger/internal/service/settings"
	"github.com/nkiryanov/bankledger/internal/service/ticket"
	"github.com/nkiryanov/bankledger/internal/service/transfer"
	"github.com/nkiryanov/bankledger/internal/service/user"
	"github.com/nkiryanov/bankledger/internal/testutil"
)

// Keeps last code sent per identity and purpose
type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) Send(_ context.Context, identity string, code string, purpose models.OtpPurpose) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.codes == nil {
		i.codes = make(map[string]string)
	}
	i.codes[identity+"/"+string(purpose)] = code
	return true
}

func (i *inbox) Code(identity string, purpose models.OtpPurpose) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[identity+"/"+string(purpose)]
}

type server struct {
	url    string
	inbox  *inbox
	tokens *tokenmanager.TokenManager
}

// Start router with real services running in db transaction
// (one connection cause one transaction)
func serveInTx(tx pgx.Tx, t *testing.T) server {
	t.Helper()

	l := logger.NewNoOpLogger()
	storage := postgres.NewStorage(tx)
	box := &inbox{}

	recorder := audit.NewRecorder(storage.Audit(), l)
	settingsService := settings.NewService(storage.Settings(), recorder)
	otpManager := otp.New(otp.Config{}, storage, settingsService, box, l)

	tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
	require.NoError(t, err, "token manager should be created without errors")

	hasher := auth.BcryptHasher{Cost: 4}
	authService, err := auth.NewService(hasher, tokens, storage.User(), otpManager, recorder)
	require.NoError(t, err, "auth service starting error")

	router := handlers.NewRouter(handlers.Services{
		Auth:        authService,
		Users:       user.NewService(hasher, storage.User(), recorder),
		Accounts:    account.NewService(storage, recorder),
		Transfers:   transfer.New(storage, otpManager, recorder),
		Beneficiary: beneficiary.NewService(storage.Beneficiary(), otpManager, recorder),
		Lifecycle:   lifecycle.New(storage, recorder),
		Redaction:   redaction.New(storage, recorder),
		Settings:    settingsService,
		Audit:       recorder,
		Notifier:    box,
		Instruments: instrument.NewService(storage.Instrument(), recorder),
		Tickets:     ticket.NewService(storage.Ticket()),
		Content:     content.NewService(storage, recorder),
	}, l)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return server{url: srv.URL, inbox: box, tokens: tokens}
}

// Send json request and decode response into out if it is not nil
func (s server) call(t *testing.T, method string, path string, token string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.url+path, &buf)
	require.NoError(t, err, "failed to create request")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "failed to send request")
	defer resp.Body.Close() // nolint:errcheck

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "failed to decode response")
	}

	return resp.StatusCode
}

func Test_BankFlow(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
		s := serveInTx(tx, t)

		admin := testutil.CreateUser(t, postgres.NewStorage(tx), models.RoleAdmin)
		adminToken, err := s.tokens.Issue(admin)
		require.NoError(t, err)

		// Customer registers and logs in with otp
		var registered models.User
		code := s.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"email":      "Jane@Bank.test",
			"password":   "StrongEnoughPassword",
			"first_name": "Jane",
			"last_name":  "Roe",
		}, &registered)
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, "jane@bank.test", registered.Email, "email has to be normalized")

		code = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email": "jane@bank.test", "password": "StrongEnoughPassword",
		}, nil)
		require.Equal(t, http.StatusOK, code)

		loginCode := s.inbox.Code("jane@bank.test", models.OtpPurposeLogin)
		require.Len(t, loginCode, 6, "login code has to be sent")

		var session struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		code = s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]any{
			"email": "jane@bank.test", "otp": loginCode,
		}, &session)
		require.Equal(t, http.StatusOK, code)
		require.NotEmpty(t, session.Token)
		require.Equal(t, registered.ID, session.User.ID)

		code = s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]any{
			"email": "jane@bank.test", "otp": loginCode,
		}, nil)
		require.Equal(t, http.StatusBadRequest, code, "login code can't be used twice")

		customer := session.Token

		// Admin opens two accounts
		var checking, savings models.Account
		code = s.call(t, http.MethodPost, "/api/admin/accounts", adminToken.Value, map[string]any{
			"user_id": registered.ID, "initial_balance": "1000.00",
		}, &checking)
		require.Equal(t, http.StatusCreated, code)
		code = s.call(t, http.MethodPost, "/api/admin/accounts", adminToken.Value, map[string]any{
			"user_id": registered.ID, "account_type": "savings",
		}, &savings)
		require.Equal(t, http.StatusCreated, code)

		code = s.call(t, http.MethodPost, "/api/admin/accounts", customer, map[string]any{
			"user_id": registered.ID,
		}, nil)
		require.Equal(t, http.StatusForbidden, code, "customer can't open accounts")

		// Internal transfer moves available balance
		code = s.call(t, http.MethodPost, "/api/transfers/internal", customer, map[string]any{
			"from_account_id": checking.ID,
			"to_account_id":   savings.ID,
			"amount":          "250.50",
			"currency":        "USD",
		}, nil)
		require.Equal(t, http.StatusCreated, code)

		code = s.call(t, http.MethodPost, "/api/transfers/internal", customer, map[string]any{
			"from_account_id": checking.ID,
			"to_account_id":   savings.ID,
			"amount":          "5000",
			"currency":        "USD",
		}, nil)
		require.Equal(t, http.StatusBadRequest, code, "insufficient funds")

		balance := func(id fmt.Stringer) models.Balances {
			var a models.Account
			code := s.call(t, http.MethodGet, "/api/accounts/"+id.String(), customer, nil, &a)
			require.Equal(t, http.StatusOK, code)
			return a.Balances
		}
		require.True(t, decimal.RequireFromString("749.50").Equal(balance(checking.ID).Available))
		require.True(t, decimal.RequireFromString("250.50").Equal(balance(savings.ID).Available))

		// Beneficiary and wire both require otp
		code = s.call(t, http.MethodPost, "/api/auth/request-otp", customer, map[string]any{"purpose": "beneficiary"}, nil)
		require.Equal(t, http.StatusOK, code)

		var payee models.Beneficiary
		code = s.call(t, http.MethodPost, "/api/beneficiaries", customer, map[string]any{
			"name":           "John Doe",
			"bank_name":      "Other Bank",
			"account_number": "DE89370400440532013000",
			"otp":            s.inbox.Code("jane@bank.test", models.OtpPurposeBeneficiary),
		}, &payee)
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, models.BeneficiaryTypeExternal, payee.Type)

		code = s.call(t, http.MethodPost, "/api/auth/request-otp", customer, map[string]any{"purpose": "transfer"}, nil)
		require.Equal(t, http.StatusOK, code)

		var wire models.Transaction
		code = s.call(t, http.MethodPost, "/api/transfers/external", customer, map[string]any{
			"from_account_id": checking.ID,
			"beneficiary_id":  payee.ID,
			"amount":          100,
			"currency":        "USD",
			"otp":             s.inbox.Code("jane@bank.test", models.OtpPurposeTransfer),
		}, &wire)
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, models.TransactionStatusPending, wire.Status)

		b := balance(checking.ID)
		require.True(t, decimal.RequireFromString("649.50").Equal(b.Available), "wire amount leaves available")
		require.True(t, decimal.NewFromInt(100).Equal(b.Transit), "wire amount waits in transit")

		// Admin settles the wire
		var pending struct {
			Transfers []models.Transaction `json:"transfers"`
			Total     int                  `json:"total"`
		}
		code = s.call(t, http.MethodGet, "/api/admin/transfers?status=pending", adminToken.Value, nil, &pending)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, 1, pending.Total)
		require.Equal(t, wire.ID, pending.Transfers[0].ID)

		code = s.call(t, http.MethodPut, "/api/admin/transfers/"+wire.ID.String(), adminToken.Value, map[string]any{
			"status": "completed", "notes": "checked",
		}, nil)
		require.Equal(t, http.StatusOK, code)

		code = s.call(t, http.MethodPut, "/api/admin/transfers/"+wire.ID.String(), adminToken.Value, map[string]any{
			"status": "rejected",
		}, nil)
		require.Equal(t, http.StatusConflict, code, "settled transfer can't change status")

		b = balance(checking.ID)
		require.True(t, decimal.RequireFromString("649.50").Equal(b.Available))
		require.True(t, b.Transit.IsZero(), "settlement releases transit")

		// Every step left audit trail
		var entries []struct {
			Action string `json:"action"`
		}
		code = s.call(t, http.MethodGet, "/api/admin/audit-logs?limit=100", adminToken.Value, nil, &entries)
		require.Equal(t, http.StatusOK, code)

		actions := make([]string, 0, len(entries))
		for _, e := range entries {
			actions = append(actions, e.Action)
		}
		require.Subset(t, actions, []string{
			string(models.AuditUserRegistered),
			string(models.AuditLoginSuccessful),
			string(models.AuditInternalTransfer),
			string(models.AuditExternalTransferInitiated),
			string(models.AuditTransferStatusUpdated),
		})
	})
}

func Test_DocumentsFlow(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
		s := serveInTx(tx, t)
		storage := postgres.NewStorage(tx)

		admin := testutil.CreateUser(t, storage, models.RoleAdmin)
		ada := testutil.CreateUser(t, storage, models.RoleCustomer)
		bob := testutil.CreateUser(t, storage, models.RoleCustomer)
		token := func(u models.User) string {
			issued, err := s.tokens.Issue(u)
			require.NoError(t, err)
			return issued.Value
		}
		adminToken, adaToken, bobToken := token(admin), token(ada), token(bob)

		// Funding instructions start from built in text and grow version on each save
		var instructions models.Content
		code := s.call(t, http.MethodGet, "/api/content/funding-instructions", "", nil, &instructions)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, 1, instructions.Version)

		for _, body := range []string{"IBAN DE00 0000", "IBAN DE11 1111"} {
			code = s.call(t, http.MethodPut, "/api/admin/content/funding-instructions", adminToken, map[string]any{"content": body}, nil)
			require.Equal(t, http.StatusOK, code)
		}
		code = s.call(t, http.MethodGet, "/api/content/funding-instructions", "", nil, &instructions)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "IBAN DE11 1111", instructions.Body)
		require.Equal(t, 2, instructions.Version)

		var history []models.Content
		code = s.call(t, http.MethodGet, "/api/admin/content/funding-instructions/history", adminToken, nil, &history)
		require.Equal(t, http.StatusOK, code)
		require.Len(t, history, 1)
		require.Equal(t, "IBAN DE00 0000", history[0].Body)

		// Instrument addressed to ada is hidden from bob
		var ktt models.Instrument
		code = s.call(t, http.MethodPost, "/api/admin/instruments", adminToken, map[string]any{
			"title":           "KTT for Ada",
			"instrument_type": "ktt",
			"content":         "tested telex",
			"amount":          "1000000",
			"currency":        "USD",
			"visibility":      "specific",
			"recipient_id":    ada.ID,
		}, &ktt)
		require.Equal(t, http.StatusCreated, code)

		code = s.call(t, http.MethodGet, "/api/instruments/"+ktt.ID.String(), adaToken, nil, nil)
		require.Equal(t, http.StatusOK, code)
		code = s.call(t, http.MethodGet, "/api/instruments/"+ktt.ID.String(), bobToken, nil, nil)
		require.Equal(t, http.StatusNotFound, code)

		var visible []models.Instrument
		code = s.call(t, http.MethodGet, "/api/instruments", bobToken, nil, &visible)
		require.Equal(t, http.StatusOK, code)
		require.Empty(t, visible)

		code = s.call(t, http.MethodDelete, "/api/admin/instruments/"+ktt.ID.String(), adminToken, nil, nil)
		require.Equal(t, http.StatusOK, code)
		code = s.call(t, http.MethodGet, "/api/instruments/"+ktt.ID.String(), adaToken, nil, nil)
		require.Equal(t, http.StatusNotFound, code)

		// Tickets belong to their author
		code = s.call(t, http.MethodPost, "/api/tickets", adaToken, map[string]any{"subject": "Card", "message": "Blocked"}, nil)
		require.Equal(t, http.StatusCreated, code)

		var tickets []models.Ticket
		code = s.call(t, http.MethodGet, "/api/tickets", bobToken, nil, &tickets)
		require.Equal(t, http.StatusOK, code)
		require.Empty(t, tickets)
		code = s.call(t, http.MethodGet, "/api/tickets", adaToken, nil, &tickets)
		require.Equal(t, http.StatusOK, code)
		require.Len(t, tickets, 1)
		require.Equal(t, models.TicketCategoryGeneral, tickets[0].Category)

		var entries []struct {
			Action string `json:"action"`
		}
		code = s.call(t, http.MethodGet, "/api/admin/audit-logs?limit=100", adminToken, nil, &entries)
		require.Equal(t, http.StatusOK, code)
		actions := make([]string, 0, len(entries))
		for _, e := range entries {
			actions = append(actions, e.Action)
		}
		require.Subset(t, actions, []string{
			string(models.AuditFundingInstructionsSaved),
			string(models.AuditInstrumentCreated),
			string(models.AuditInstrumentDeleted),
		})
	})
}
