package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
)

type ContentRepo struct {
	DB DBTX
}

const contentColumns = `kind, body, version, updated_by, updated_at`

const getContent = `-- name: GetContent
SELECT ` + contentColumns + ` FROM contents
WHERE kind = $1
`

func (r *ContentRepo) GetContent(ctx context.Context, kind models.ContentKind, forUpdate bool) (models.Content, error) {
	query := getContent
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, kind)
	c, err := pgx.CollectOneRow(rows, rowToContent)

	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, pgx.ErrNoRows):
		return c, apperrors.ErrContentNotFound
	default:
		return c, fmt.Errorf("db error: %w", err)
	}
}

const saveContent = `-- name: SaveContent
INSERT INTO contents (kind, body, version, updated_by, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (kind) DO UPDATE SET
	body = EXCLUDED.body,
	version = EXCLUDED.version,
	updated_by = EXCLUDED.updated_by,
	updated_at = EXCLUDED.updated_at
RETURNING ` + contentColumns

func (r *ContentRepo) SaveContent(ctx context.Context, c models.Content) (models.Content, error) {
	rows, _ := r.DB.Query(ctx, saveContent, c.Kind, c.Body, c.Version, c.UpdatedBy)
	saved, err := pgx.CollectOneRow(rows, rowToContent)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

const archiveContent = `-- name: ArchiveContent
INSERT INTO content_versions (kind, body, version, updated_by, updated_at)
VALUES ($1, $2, $3, $4, $5)
`

func (r *ContentRepo) ArchiveContent(ctx context.Context, c models.Content) error {
	_, err := r.DB.Exec(ctx, archiveContent, c.Kind, c.Body, c.Version, c.UpdatedBy, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const listContentVersions = `-- name: ListContentVersions
SELECT ` + contentColumns + ` FROM content_versions
WHERE kind = $1
ORDER BY version DESC
`

func (r *ContentRepo) ListContentVersions(ctx context.Context, kind models.ContentKind) ([]models.Content, error) {
	rows, _ := r.DB.Query(ctx, listContentVersions, kind)
	list, err := pgx.CollectRows(rows, rowToContent)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func rowToContent(row pgx.CollectableRow) (models.Content, error) {
	var c models.Content
	err := row.Scan(&c.Kind, &c.Body, &c.Version, &c.UpdatedBy, &c.UpdatedAt)
	return c, err
}
