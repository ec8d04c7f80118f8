package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/notify"
)

const (
	defaultExpiry      = 5 * time.Minute
	defaultMaxAttempts = 3

	codeDigits = 6
)

var codeSpace = big.NewInt(1_000_000)

// Fallback values used when admin settings leave them unset
type Config struct {
	Expiry      time.Duration
	MaxAttempts int
}

type SettingsProvider interface {
	Get(ctx context.Context) (models.Settings, error)
}

// Manager issues and verifies one-time codes
// Only the newest challenge for identity and purpose may be verified
type Manager struct {
	cfg      Config
	storage  repository.Storage
	settings SettingsProvider
	sender   notify.Sender
	logger   logger.Logger

	now func() time.Time
}

func New(cfg Config, storage repository.Storage, settings SettingsProvider, sender notify.Sender, logger logger.Logger) *Manager {
	if cfg.Expiry <= 0 {
		cfg.Expiry = defaultExpiry
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}

	return &Manager{
		cfg:      cfg,
		storage:  storage,
		settings: settings,
		sender:   sender,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue creates new challenge superseding earlier ones and sends the code
// Failed delivery does not invalidate the challenge
func (m *Manager) Issue(ctx context.Context, identity string, purpose models.OtpPurpose) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("can't generate otp. Err: %w", err)
	}

	expiry, _ := m.limits(ctx)
	now := m.now()

	_, err = m.storage.Otp().CreateChallenge(ctx, models.OtpChallenge{
		Identity:  identity,
		Purpose:   purpose,
		CodeHash:  hashCode(code),
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("can't store otp challenge. Err: %w", err)
	}

	if !m.sender.Send(ctx, identity, code, purpose) {
		m.logger.Warn("Otp issued but not delivered", "identity", identity, "purpose", purpose)
	}

	return code, nil
}

// Verify consumes the newest challenge if code matches
// Wrong code consumes an attempt even though error is returned
func (m *Manager) Verify(ctx context.Context, identity string, purpose models.OtpPurpose, code string) error {
	_, maxAttempts := m.limits(ctx)

	var mismatch bool

	err := m.storage.InTx(ctx, func(storage repository.Storage) error {
		challenge, err := storage.Otp().GetLatestChallenge(ctx, identity, purpose, true)
		if err != nil {
			return err
		}

		switch {
		case challenge.Used:
			return apperrors.ErrOtpNoChallenge
		case m.now().After(challenge.ExpiresAt):
			return apperrors.ErrOtpExpired
		case challenge.Attempts >= maxAttempts:
			return apperrors.ErrOtpTooManyAttempts
		}

		if subtle.ConstantTimeCompare([]byte(hashCode(code)), []byte(challenge.CodeHash)) != 1 {
			// Attempt has to be committed, so the error is reported after the transaction
			_, err := storage.Otp().IncrementAttempts(ctx, challenge.ID)
			mismatch = true
			return err
		}

		return storage.Otp().MarkUsed(ctx, challenge.ID)
	})

	switch {
	case err != nil:
		return err
	case mismatch:
		return apperrors.ErrOtpMismatch
	default:
		return nil
	}
}

// limits returns code lifetime and allowed attempts, admin settings take precedence
func (m *Manager) limits(ctx context.Context) (time.Duration, int) {
	expiry, maxAttempts := m.cfg.Expiry, m.cfg.MaxAttempts
	if m.settings == nil {
		return expiry, maxAttempts
	}

	s, err := m.settings.Get(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrSettingsNotFound) {
		m.logger.Warn("Can't read otp settings, using defaults", "error", err)
		return expiry, maxAttempts
	}

	if s.OtpExpiryMinutes > 0 {
		expiry = time.Duration(s.OtpExpiryMinutes) * time.Minute
	}
	if s.MaxOtpAttempts > 0 {
		maxAttempts = s.MaxOtpAttempts
	}

	return expiry, maxAttempts
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
