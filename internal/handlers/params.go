package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/handlers/userctx"
	"github.com/nkiryanov/bankledger/internal/models"
)

// Path value parsed as uuid, writes 404 if it is not one
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		render.ServiceError(w, "Not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// Actor set by auth middleware
func actorFrom(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
	}
	return actor, ok
}

type pageQuery struct {
	Offset int
	Limit  int
}

// Reads offset and limit query params
// Missing values are zero, services apply default limits
func parsePage(r *http.Request) (pageQuery, error) {
	var p pageQuery
	var err error

	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		if p.Offset, err = strconv.Atoi(v); err != nil || p.Offset < 0 {
			return p, fmt.Errorf("offset %q: %w", v, apperrors.ErrInvalidValue)
		}
	}
	if v := q.Get("limit"); v != "" {
		if p.Limit, err = strconv.Atoi(v); err != nil || p.Limit < 0 {
			return p, fmt.Errorf("limit %q: %w", v, apperrors.ErrInvalidValue)
		}
	}

	return p, nil
}

// Time query param in RFC 3339 or as plain date, nil if missing
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s %q: %w", name, v, apperrors.ErrInvalidValue)
}

// Status query param, empty if missing
func parseStatusParam(r *http.Request) (models.TransactionStatus, error) {
	v := r.URL.Query().Get("status")
	if v == "" {
		return "", nil
	}
	return models.ParseTransactionStatus(v)
}
