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
)

type BeneficiaryRepo struct {
	DB DBTX
}

const beneficiaryColumns = `id, user_id, name, bank_name, account_number, routing_number, swift_code,
	beneficiary_type, status, created_at`

const createBeneficiary = `-- name: CreateBeneficiary
INSERT INTO beneficiaries (id, user_id, name, bank_name, account_number, routing_number, swift_code, beneficiary_type, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + beneficiaryColumns

func (r *BeneficiaryRepo) CreateBeneficiary(ctx context.Context, b models.Beneficiary) (models.Beneficiary, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = models.BeneficiaryStatusActive
	}

	rows, _ := r.DB.Query(ctx, createBeneficiary,
		b.ID, b.UserID, b.Name, b.BankName, b.AccountNumber, b.RoutingNumber, b.SwiftCode, b.Type, b.Status,
	)
	created, err := pgx.CollectOneRow(rows, rowToBeneficiary)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrUserNotFound
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getBeneficiary = `-- name: GetBeneficiary
SELECT ` + beneficiaryColumns + ` FROM beneficiaries
WHERE id = $1 AND user_id = $2
`

func (r *BeneficiaryRepo) GetBeneficiary(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Beneficiary, error) {
	rows, _ := r.DB.Query(ctx, getBeneficiary, id, userID)
	b, err := pgx.CollectOneRow(rows, rowToBeneficiary)

	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, pgx.ErrNoRows):
		return b, apperrors.ErrBeneficiaryNotFound
	default:
		return b, fmt.Errorf("db error: %w", err)
	}
}

const listBeneficiaries = `-- name: ListBeneficiaries
SELECT ` + beneficiaryColumns + ` FROM beneficiaries
WHERE user_id = $1
ORDER BY created_at DESC, id
`

func (r *BeneficiaryRepo) ListBeneficiaries(ctx context.Context, userID uuid.UUID) ([]models.Beneficiary, error) {
	rows, _ := r.DB.Query(ctx, listBeneficiaries, userID)
	list, err := pgx.CollectRows(rows, rowToBeneficiary)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

const deleteBeneficiary = `-- name: DeleteBeneficiary
DELETE FROM beneficiaries
WHERE id = $1 AND user_id = $2
`

func (r *BeneficiaryRepo) DeleteBeneficiary(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteBeneficiary, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBeneficiaryNotFound
	}

	return nil
}

func rowToBeneficiary(row pgx.CollectableRow) (models.Beneficiary, error) {
	var b models.Beneficiary
	err := row.Scan(
		&b.ID, &b.UserID, &b.Name, &b.BankName, &b.AccountNumber, &b.RoutingNumber, &b.SwiftCode,
		&b.Type, &b.Status, &b.CreatedAt,
	)
	return b, err
}
