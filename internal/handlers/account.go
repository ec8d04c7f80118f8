package handlers

import (
	"net/http"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/service/account"
)

func handleListAccounts(accounts accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := accounts.ListOwn(r.Context(), actor)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, list)
	})
}

func handleGetAccount(accounts accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		a, err := accounts.Get(r.Context(), actor, id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, a)
	})
}

func handleAccountHistory(accounts accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		opts, err := parseHistoryQuery(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		history, err := accounts.History(r.Context(), actor, id, opts)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, history)
	})
}

func parseHistoryQuery(r *http.Request) (account.HistoryOpts, error) {
	var opts account.HistoryOpts

	page, err := parsePage(r)
	if err != nil {
		return opts, err
	}
	opts.Offset, opts.Limit = page.Offset, page.Limit

	if opts.Status, err = parseStatusParam(r); err != nil {
		return opts, err
	}
	if opts.From, err = parseTimeParam(r, "from"); err != nil {
		return opts, err
	}
	if opts.To, err = parseTimeParam(r, "to"); err != nil {
		return opts, err
	}

	return opts, nil
}
