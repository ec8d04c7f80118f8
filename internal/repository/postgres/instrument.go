package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

type InstrumentRepo struct {
	DB DBTX
}

const instrumentColumns = `id, title, instrument_type, content, amount, currency, visibility, recipient_id,
	status, created_by, created_at`

const createInstrument = `-- name: CreateInstrument
INSERT INTO instruments (id, title, instrument_type, content, amount, currency, visibility, recipient_id, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + instrumentColumns

func (r *InstrumentRepo) CreateInstrument(ctx context.Context, i models.Instrument) (models.Instrument, error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = models.InstrumentStatusActive
	}

	rows, _ := r.DB.Query(ctx, createInstrument,
		i.ID, i.Title, i.Type, i.Content, i.Amount, i.Currency, i.Visibility, i.RecipientID, i.Status, i.CreatedBy,
	)
	created, err := pgx.CollectOneRow(rows, rowToInstrument)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrUserNotFound
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getInstrument = `-- name: GetInstrument
SELECT ` + instrumentColumns + ` FROM instruments
WHERE id = $1
`

func (r *InstrumentRepo) GetInstrument(ctx context.Context, id uuid.UUID) (models.Instrument, error) {
	rows, _ := r.DB.Query(ctx, getInstrument, id)
	i, err := pgx.CollectOneRow(rows, rowToInstrument)

	switch {
	case err == nil:
		return i, nil
	case errors.Is(err, pgx.ErrNoRows):
		return i, apperrors.ErrInstrumentNotFound
	default:
		return i, fmt.Errorf("db error: %w", err)
	}
}

const listInstruments = `-- name: ListInstruments
SELECT ` + instrumentColumns + ` FROM instruments
WHERE ($1::uuid IS NULL OR visibility = 'all' OR recipient_id = $1::uuid)
	AND (NOT $2::boolean OR status = 'active')
ORDER BY created_at DESC, id
`

func (r *InstrumentRepo) ListInstruments(ctx context.Context, opts repository.ListInstrumentsOpts) ([]models.Instrument, error) {
	rows, _ := r.DB.Query(ctx, listInstruments, opts.VisibleTo, opts.ActiveOnly)
	list, err := pgx.CollectRows(rows, rowToInstrument)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

const deleteInstrument = `-- name: DeleteInstrument
DELETE FROM instruments
WHERE id = $1
`

func (r *InstrumentRepo) DeleteInstrument(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteInstrument, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInstrumentNotFound
	}

	return nil
}

func rowToInstrument(row pgx.CollectableRow) (models.Instrument, error) {
	var i models.Instrument
	err := row.Scan(
		&i.ID, &i.Title, &i.Type, &i.Content, &i.Amount, &i.Currency, &i.Visibility, &i.RecipientID,
		&i.Status, &i.CreatedBy, &i.CreatedAt,
	)
	return i, err
}
