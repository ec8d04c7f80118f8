package handlers

import (
	"net/http"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
)

// Public, shown on the deposit page before login
func handleGetFundingInstructions(contents contentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := contents.Get(r.Context(), models.ContentFundingInstructions)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, c)
	})
}

func handleUpdateFundingInstructions(contents contentService, l logger.Logger) http.Handler {
	type request struct {
		Content string `json:"content" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
		Version int    `json:"version"`
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

		c, err := contents.Update(r.Context(), actor, models.ContentFundingInstructions, data.Content)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{Message: "Funding instructions updated", Version: c.Version})
	})
}

func handleFundingInstructionsHistory(contents contentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := contents.History(r.Context(), actor, models.ContentFundingInstructions)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, list)
	})
}
