package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/service/instrument"
)

func handleListInstruments(instruments instrumentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := instruments.ListVisible(r.Context(), actor)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, list)
	})
}

func handleGetInstrument(instruments instrumentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		i, err := instruments.Get(r.Context(), actor, id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, i)
	})
}

func handleListAllInstruments(instruments instrumentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := instruments.ListAll(r.Context(), actor)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, list)
	})
}

func handleCreateInstrument(instruments instrumentService, l logger.Logger) http.Handler {
	type request struct {
		Title       string           `json:"title" validate:"required,max=200"`
		Type        string           `json:"instrument_type" validate:"required,oneof=ktt cd endorsement"`
		Content     string           `json:"content" validate:"required"`
		Amount      *decimal.Decimal `json:"amount"`
		Currency    string           `json:"currency" validate:"omitempty,currency"`
		Visibility  string           `json:"visibility" validate:"omitempty,oneof=all specific"`
		RecipientID *uuid.UUID       `json:"recipient_id"`
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

		visibility := models.InstrumentVisibleToAll
		if data.Visibility != "" {
			visibility = models.InstrumentVisibility(data.Visibility)
		}

		i, err := instruments.Create(r.Context(), actor, instrument.CreateInput{
			Title:       data.Title,
			Type:        models.InstrumentType(data.Type),
			Content:     data.Content,
			Amount:      data.Amount,
			Currency:    data.Currency,
			Visibility:  visibility,
			RecipientID: data.RecipientID,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, i, http.StatusCreated)
	})
}

func handleDeleteInstrument(instruments instrumentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := instruments.Delete(r.Context(), actor, id); err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Instrument deleted"})
	})
}
