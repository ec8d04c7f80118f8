package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/account"
	"github.com/nkiryanov/bankledger/internal/service/settings"
	"github.com/nkiryanov/bankledger/internal/service/user"
)

// Code sent by test email, never a valid otp
const testEmailCode = "123456"

func handleDashboard(accounts accountService, l logger.Logger) http.Handler {
	type currencyTotal struct {
		Currency string          `json:"currency"`
		Total    decimal.Decimal `json:"total"`
	}
	type response struct {
		TotalCustomers    int             `json:"total_customers"`
		ActiveCustomers   int             `json:"active_customers"`
		PendingTransfers  int             `json:"pending_transfers"`
		TotalAccounts     int             `json:"total_accounts"`
		BalanceByCurrency []currencyTotal `json:"balance_by_currency"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		d, err := accounts.Dashboard(r.Context(), actor)
		if err != nil {
			renderError(w, l, err)
			return
		}

		totals := make([]currencyTotal, 0, len(d.BalanceByCurrency))
		for _, t := range d.BalanceByCurrency {
			totals = append(totals, currencyTotal(t))
		}

		render.JSON(w, response{
			TotalCustomers:    d.TotalCustomers,
			ActiveCustomers:   d.ActiveCustomers,
			PendingTransfers:  d.PendingTransfers,
			TotalAccounts:     d.TotalAccounts,
			BalanceByCurrency: totals,
		})
	})
}

func handleListCustomers(users userService, l logger.Logger) http.Handler {
	type response struct {
		Customers []models.User `json:"customers"`
		Total     int           `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		page, err := parsePage(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		opts := user.ListOpts{Offset: page.Offset, Limit: page.Limit}
		if v := r.URL.Query().Get("status"); v != "" {
			if opts.Status, err = models.ParseUserStatus(v); err != nil {
				renderError(w, l, err)
				return
			}
		}

		list, total, err := users.List(r.Context(), actor, opts)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{Customers: list, Total: total})
	})
}

func handleCreateCustomer(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[registerRequest](w, r)
		if err != nil {
			return
		}

		u, err := users.CreateByAdmin(r.Context(), actor, data.input())
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, u, http.StatusCreated)
	})
}

func handleGetCustomer(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		u, err := users.Get(r.Context(), actor, id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, u)
	})
}

func handleUpdateCustomer(users userService, l logger.Logger) http.Handler {
	type request struct {
		Status    *string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
		KycStatus *string `json:"kyc_status" validate:"omitempty,oneof=pending verified rejected"`
		Notes     *string `json:"notes" validate:"omitempty,max=2000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		var opts repository.UpdateUserOpts
		if data.Status != nil {
			status := models.UserStatus(*data.Status)
			opts.Status = &status
		}
		if data.KycStatus != nil {
			kyc := models.KycStatus(*data.KycStatus)
			opts.KycStatus = &kyc
		}
		opts.Notes = data.Notes

		u, err := users.Update(r.Context(), actor, id, opts)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, u)
	})
}

func handleListAllAccounts(accounts accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		page, err := parsePage(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		list, err := accounts.ListAll(r.Context(), actor, page.Offset, page.Limit)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, list)
	})
}

func handleCreateAccount(accounts accountService, l logger.Logger) http.Handler {
	type request struct {
		UserID         uuid.UUID       `json:"user_id" validate:"required"`
		AccountType    string          `json:"account_type" validate:"omitempty,oneof=checking savings ktt"`
		Currency       string          `json:"currency" validate:"omitempty,currency"`
		InitialBalance decimal.Decimal `json:"initial_balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		in := account.CreateInput{
			UserID:         data.UserID,
			Type:           models.AccountTypeChecking,
			Currency:       "USD",
			InitialBalance: data.InitialBalance,
		}
		if data.AccountType != "" {
			in.Type = models.AccountType(data.AccountType)
		}
		if data.Currency != "" {
			in.Currency = data.Currency
		}

		a, err := accounts.Create(r.Context(), actor, in)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, a, http.StatusCreated)
	})
}

func handleListTransfers(lifecycle lifecycleService, l logger.Logger) http.Handler {
	type response struct {
		Transfers []models.Transaction `json:"transfers"`
		Total     int                  `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		page, err := parsePage(r)
		if err != nil {
			renderError(w, l, err)
			return
		}
		status, err := parseStatusParam(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		opts := repository.ListTransactionsOpts{Offset: page.Offset, Limit: page.Limit}
		if status != "" {
			opts.Statuses = []models.TransactionStatus{status}
		}

		list, total, err := lifecycle.List(r.Context(), actor, opts)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{Transfers: list, Total: total})
	})
}

func handleUpdateTransfer(lifecycle lifecycleService, l logger.Logger) http.Handler {
	type request struct {
		Status string `json:"status" validate:"required"`
		Notes  string `json:"notes" validate:"max=2000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		to, err := models.ParseTransactionStatus(data.Status)
		if err != nil {
			renderError(w, l, err)
			return
		}

		txn, err := lifecycle.Transition(r.Context(), actor, id, to, data.Notes)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, txn)
	})
}

func handleRedact(redaction redactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := redaction.Redact(r.Context(), actor, id); err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Transaction redacted"})
	})
}

// Settings as shown to admins, smtp password never leaves the server
type settingsResponse struct {
	SmtpHost         string    `json:"smtp_host"`
	SmtpPort         int       `json:"smtp_port"`
	SmtpUser         string    `json:"smtp_user"`
	SmtpPasswordSet  bool      `json:"smtp_password_set"`
	SmtpFromEmail    string    `json:"smtp_from_email"`
	OtpExpiryMinutes int       `json:"otp_expiry_minutes"`
	MaxOtpAttempts   int       `json:"max_otp_attempts"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newSettingsResponse(s models.Settings) settingsResponse {
	return settingsResponse{
		SmtpHost:         s.SmtpHost,
		SmtpPort:         s.SmtpPort,
		SmtpUser:         s.SmtpUser,
		SmtpPasswordSet:  s.SmtpPassword != "",
		SmtpFromEmail:    s.SmtpFromEmail,
		OtpExpiryMinutes: s.OtpExpiryMinutes,
		MaxOtpAttempts:   s.MaxOtpAttempts,
		UpdatedAt:        s.UpdatedAt,
	}
}

func handleGetSettings(settings settingsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := settings.Get(r.Context())
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newSettingsResponse(s))
	})
}

func handleUpdateSettings(svc settingsService, l logger.Logger) http.Handler {
	type request struct {
		SmtpHost         string `json:"smtp_host" validate:"omitempty,hostname_rfc1123"`
		SmtpPort         int    `json:"smtp_port" validate:"min=0,max=65535"`
		SmtpUser         string `json:"smtp_user"`
		SmtpPassword     string `json:"smtp_password"`
		SmtpFromEmail    string `json:"smtp_from_email" validate:"omitempty,email"`
		OtpExpiryMinutes int    `json:"otp_expiry_minutes" validate:"min=0,max=60"`
		MaxOtpAttempts   int    `json:"max_otp_attempts" validate:"min=0,max=10"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		s, err := svc.Update(r.Context(), actor, settings.UpdateInput(data))
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newSettingsResponse(s))
	})
}

func handleTestEmail(n notifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		if !n.Send(r.Context(), actor.Email, testEmailCode, models.OtpPurposeTest) {
			render.ServiceError(w, "Failed to send test email", http.StatusInternalServerError)
			return
		}

		render.JSON(w, messageResponse{Message: "Test email sent successfully"})
	})
}

func handleListAudit(audit auditService, l logger.Logger) http.Handler {
	type entry struct {
		ID        uuid.UUID       `json:"id"`
		ActorID   *uuid.UUID      `json:"user_id"`
		Action    string          `json:"action"`
		Details   map[string]any  `json:"details"`
		Before    json.RawMessage `json:"before,omitempty"`
		After     json.RawMessage `json:"after,omitempty"`
		CreatedAt time.Time       `json:"timestamp"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		page, err := parsePage(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		opts := repository.ListAuditOpts{
			Action: models.AuditAction(r.URL.Query().Get("action")),
			Offset: page.Offset,
			Limit:  page.Limit,
		}
		if v := r.URL.Query().Get("user_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				render.ServiceError(w, "Invalid value", http.StatusBadRequest)
				return
			}
			opts.ActorID = &id
		}

		entries, err := audit.List(r.Context(), actor, opts)
		if err != nil {
			renderError(w, l, err)
			return
		}

		resp := make([]entry, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, entry{
				ID:        e.ID,
				ActorID:   e.ActorID,
				Action:    string(e.Action),
				Details:   e.Details,
				Before:    e.Before,
				After:     e.After,
				CreatedAt: e.CreatedAt,
			})
		}

		render.JSON(w, resp)
	})
}
