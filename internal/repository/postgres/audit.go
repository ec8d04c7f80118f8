package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

type AuditRepo struct {
	DB DBTX
}

const createAuditEntry = `-- name: CreateAuditEntry
INSERT INTO audit_logs (id, actor_id, action, details, before, after, created_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
`

func (r *AuditRepo) CreateEntry(ctx context.Context, e models.AuditEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("audit details are not serializable: %w", err)
	}

	var createdAt any
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}

	_, err = r.DB.Exec(ctx, createAuditEntry,
		e.ID, e.ActorID, e.Action, detailsJSON, nullJSON(e.Before), nullJSON(e.After), createdAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const listAuditEntries = `-- name: ListAuditEntries
SELECT id, actor_id, action, details, before, after, created_at FROM audit_logs
WHERE ($1 = '' OR action = $1) AND ($2::uuid IS NULL OR actor_id = $2)
ORDER BY created_at DESC, id
OFFSET $3 LIMIT $4
`

func (r *AuditRepo) ListEntries(ctx context.Context, opts repository.ListAuditOpts) ([]models.AuditEntry, error) {
	rows, _ := r.DB.Query(ctx, listAuditEntries, string(opts.Action), opts.ActorID, opts.Offset, limitOrAll(opts.Limit))
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AuditEntry, error) {
		var (
			e                      models.AuditEntry
			details, before, after []byte
		)
		err := row.Scan(&e.ID, &e.ActorID, &e.Action, &details, &before, &after, &e.CreatedAt)
		if err != nil {
			return e, err
		}
		e.Before, e.After = before, after
		err = json.Unmarshal(details, &e.Details)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

// nullJSON stores empty snapshot as SQL NULL
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
