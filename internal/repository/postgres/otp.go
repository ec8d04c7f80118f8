package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
)

type OtpRepo struct {
	DB DBTX
}

const otpColumns = `id, user_id, identity, purpose, code_hash, attempts, used, created_at, expires_at`

const createOtpChallenge = `-- name: CreateOtpChallenge
INSERT INTO otp_challenges (id, user_id, identity, purpose, code_hash, attempts, used, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, 0, false, $6, $7)
RETURNING ` + otpColumns

func (r *OtpRepo) CreateChallenge(ctx context.Context, c models.OtpChallenge) (models.OtpChallenge, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createOtpChallenge, c.ID, c.UserID, c.Identity, c.Purpose, c.CodeHash, c.CreatedAt, c.ExpiresAt)
	created, err := pgx.CollectOneRow(rows, rowToOtpChallenge)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

// seq breaks ties of challenges issued at the same instant
const getLatestOtpChallenge = `-- name: GetLatestOtpChallenge
SELECT ` + otpColumns + ` FROM otp_challenges
WHERE identity = $1 AND purpose = $2
ORDER BY created_at DESC, seq DESC
LIMIT 1
`

func (r *OtpRepo) GetLatestChallenge(ctx context.Context, identity string, purpose models.OtpPurpose, forUpdate bool) (models.OtpChallenge, error) {
	query := getLatestOtpChallenge
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, identity, purpose)
	c, err := pgx.CollectOneRow(rows, rowToOtpChallenge)

	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, pgx.ErrNoRows):
		return c, apperrors.ErrOtpNoChallenge
	default:
		return c, fmt.Errorf("db error: %w", err)
	}
}

const incrementOtpAttempts = `-- name: IncrementOtpAttempts
UPDATE otp_challenges SET attempts = attempts + 1
WHERE id = $1
RETURNING attempts
`

func (r *OtpRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := r.DB.QueryRow(ctx, incrementOtpAttempts, id).Scan(&attempts)

	switch {
	case err == nil:
		return attempts, nil
	case errors.Is(err, pgx.ErrNoRows):
		return 0, apperrors.ErrOtpNoChallenge
	default:
		return 0, fmt.Errorf("db error: %w", err)
	}
}

const markOtpUsed = `-- name: MarkOtpUsed
UPDATE otp_challenges SET used = true
WHERE id = $1 AND NOT used
`

func (r *OtpRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, markOtpUsed, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrOtpNoChallenge
	}

	return nil
}

func rowToOtpChallenge(row pgx.CollectableRow) (models.OtpChallenge, error) {
	var c models.OtpChallenge
	err := row.Scan(&c.ID, &c.UserID, &c.Identity, &c.Purpose, &c.CodeHash, &c.Attempts, &c.Used, &c.CreatedAt, &c.ExpiresAt)
	return c, err
}
