package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
)

type SettingsRepo struct {
	DB DBTX
}

const settingsColumns = `smtp_host, smtp_port, smtp_user, smtp_password, smtp_from_email,
	otp_expiry_minutes, max_otp_attempts, updated_at`

const getSettings = `-- name: GetSettings
SELECT ` + settingsColumns + ` FROM settings
WHERE id = 1
`

func (r *SettingsRepo) GetSettings(ctx context.Context) (models.Settings, error) {
	rows, _ := r.DB.Query(ctx, getSettings)
	s, err := pgx.CollectOneRow(rows, rowToSettings)

	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, pgx.ErrNoRows):
		return s, apperrors.ErrSettingsNotFound
	default:
		return s, fmt.Errorf("db error: %w", err)
	}
}

const saveSettings = `-- name: SaveSettings
INSERT INTO settings (id, smtp_host, smtp_port, smtp_user, smtp_password, smtp_from_email, otp_expiry_minutes, max_otp_attempts, updated_at)
VALUES (1, $1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (id) DO UPDATE SET
	smtp_host = EXCLUDED.smtp_host,
	smtp_port = EXCLUDED.smtp_port,
	smtp_user = EXCLUDED.smtp_user,
	smtp_password = EXCLUDED.smtp_password,
	smtp_from_email = EXCLUDED.smtp_from_email,
	otp_expiry_minutes = EXCLUDED.otp_expiry_minutes,
	max_otp_attempts = EXCLUDED.max_otp_attempts,
	updated_at = EXCLUDED.updated_at
RETURNING ` + settingsColumns

func (r *SettingsRepo) SaveSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	rows, _ := r.DB.Query(ctx, saveSettings,
		s.SmtpHost, s.SmtpPort, s.SmtpUser, s.SmtpPassword, s.SmtpFromEmail, s.OtpExpiryMinutes, s.MaxOtpAttempts,
	)
	saved, err := pgx.CollectOneRow(rows, rowToSettings)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

func rowToSettings(row pgx.CollectableRow) (models.Settings, error) {
	var s models.Settings
	err := row.Scan(
		&s.SmtpHost, &s.SmtpPort, &s.SmtpUser, &s.SmtpPassword, &s.SmtpFromEmail,
		&s.OtpExpiryMinutes, &s.MaxOtpAttempts, &s.UpdatedAt,
	)
	return s, err
}
