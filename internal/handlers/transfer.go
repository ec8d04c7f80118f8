package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/service/transfer"
)

func handleInternalTransfer(transfers transferService, l logger.Logger) http.Handler {
	type request struct {
		FromAccountID uuid.UUID       `json:"from_account_id" validate:"required"`
		ToAccountID   uuid.UUID       `json:"to_account_id" validate:"required"`
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency" validate:"required,currency"`
		Description   string          `json:"description" validate:"max=500"`
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

		txn, err := transfers.Move(r.Context(), actor, transfer.MoveInput{
			FromAccountID: data.FromAccountID,
			ToAccountID:   data.ToAccountID,
			Amount:        data.Amount,
			Currency:      data.Currency,
			Description:   data.Description,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, txn, http.StatusCreated)
	})
}

func handleExternalTransfer(transfers transferService, l logger.Logger) http.Handler {
	type request struct {
		FromAccountID uuid.UUID       `json:"from_account_id" validate:"required"`
		BeneficiaryID uuid.UUID       `json:"beneficiary_id" validate:"required"`
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency" validate:"required,currency"`
		Description   string          `json:"description" validate:"max=500"`
		Otp           string          `json:"otp" validate:"required,len=6,digits"`
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

		txn, err := transfers.InitiateWire(r.Context(), actor, transfer.WireInput{
			FromAccountID: data.FromAccountID,
			BeneficiaryID: data.BeneficiaryID,
			Amount:        data.Amount,
			Currency:      data.Currency,
			Description:   data.Description,
			OtpCode:       data.Otp,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, txn, http.StatusCreated)
	})
}
