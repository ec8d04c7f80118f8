package handlers

import (
	"net/http"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/service/ticket"
)

func handleListTickets(tickets ticketService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := tickets.List(r.Context(), actor)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, list)
	})
}

func handleCreateTicket(tickets ticketService, l logger.Logger) http.Handler {
	type request struct {
		Subject  string `json:"subject" validate:"required,max=200"`
		Message  string `json:"message" validate:"required,max=5000"`
		Category string `json:"category" validate:"omitempty,max=50"`
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

		t, err := tickets.Create(r.Context(), actor, ticket.CreateInput{
			Subject:  data.Subject,
			Message:  data.Message,
			Category: data.Category,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, t, http.StatusCreated)
	})
}
