package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

const defaultListLimit = 100

var writeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bankledger_audit_write_failures_total",
	Help: "Audit records that could not be stored",
})

// Recorder appends audit records
// Records are written after the business transaction is committed, so a failure is logged and counted only
type Recorder struct {
	repo   repository.AuditRepo
	logger logger.Logger
	now    func() time.Time
}

func NewRecorder(repo repository.AuditRepo, logger logger.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, entry models.AuditEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}

	// Action already happened, client going away must not drop its record
	err := r.repo.CreateEntry(context.WithoutCancel(ctx), entry)
	if err != nil {
		writeFailures.Inc()
		r.logger.Error("Failed to write audit record", "error", err, "action", entry.Action, "details", entry.Details)
	}
}

// List returns audit records newest first, staff only
func (r *Recorder) List(ctx context.Context, actor models.Actor, opts repository.ListAuditOpts) ([]models.AuditEntry, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.ErrUnauthorized
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}

	entries, err := r.repo.ListEntries(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("can't list audit records. Err: %w", err)
	}

	return entries, nil
}

// Snapshot encodes entity state for Before and After fields
// Not encodable value gives nil snapshot, audit record is still written
func Snapshot(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// Helper for the common actor pointer
func ActorID(a models.Actor) *uuid.UUID {
	id := a.UserID
	return &id
}
