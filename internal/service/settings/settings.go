package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

const (
	defaultSmtpPort         = 587
	defaultOtpExpiryMinutes = 5
	defaultMaxOtpAttempts   = 3
)

// Value settings have until admin saves them
func Defaults() models.Settings {
	return models.Settings{
		SmtpPort:         defaultSmtpPort,
		OtpExpiryMinutes: defaultOtpExpiryMinutes,
		MaxOtpAttempts:   defaultMaxOtpAttempts,
	}
}

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type Service struct {
	repo     repository.SettingsRepo
	recorder auditRecorder
}

func NewService(repo repository.SettingsRepo, recorder auditRecorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// Get returns saved settings or defaults if nothing saved yet
func (s *Service) Get(ctx context.Context) (models.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)

	switch {
	case err == nil:
		return settings, nil
	case errors.Is(err, apperrors.ErrSettingsNotFound):
		return Defaults(), nil
	default:
		return settings, fmt.Errorf("can't read settings. Err: %w", err)
	}
}

type UpdateInput struct {
	SmtpHost         string
	SmtpPort         int
	SmtpUser         string
	SmtpPassword     string
	SmtpFromEmail    string
	OtpExpiryMinutes int
	MaxOtpAttempts   int
}

func (s *Service) Update(ctx context.Context, actor models.Actor, in UpdateInput) (models.Settings, error) {
	if !actor.Role.IsStaff() {
		return models.Settings{}, apperrors.ErrUnauthorized
	}
	if in.SmtpPort < 0 || in.OtpExpiryMinutes < 0 || in.MaxOtpAttempts < 0 {
		return models.Settings{}, fmt.Errorf("settings must not be negative: %w", apperrors.ErrInvalidValue)
	}

	defaults := Defaults()
	orDefault := func(v int, def int) int {
		if v == 0 {
			return def
		}
		return v
	}

	saved, err := s.repo.SaveSettings(ctx, models.Settings{
		SmtpHost:         in.SmtpHost,
		SmtpPort:         orDefault(in.SmtpPort, defaults.SmtpPort),
		SmtpUser:         in.SmtpUser,
		SmtpPassword:     in.SmtpPassword,
		SmtpFromEmail:    in.SmtpFromEmail,
		OtpExpiryMinutes: orDefault(in.OtpExpiryMinutes, defaults.OtpExpiryMinutes),
		MaxOtpAttempts:   orDefault(in.MaxOtpAttempts, defaults.MaxOtpAttempts),
	})
	if err != nil {
		return saved, fmt.Errorf("can't save settings. Err: %w", err)
	}

	actorID := actor.UserID
	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: &actorID,
		Action:  models.AuditSettingsUpdated,
		Details: map[string]any{"type": "smtp"},
	})

	return saved, nil
}
