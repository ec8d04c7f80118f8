package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/audit"
)

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type kindInfo struct {
	fallback string
	action   models.AuditAction
}

var kinds = map[models.ContentKind]kindInfo{
	models.ContentFundingInstructions: {
		fallback: models.DefaultFundingInstructions,
		action:   models.AuditFundingInstructionsSaved,
	},
}

// Service keeps staff edited texts with full version history
type Service struct {
	storage  repository.Storage
	recorder auditRecorder
}

func NewService(storage repository.Storage, recorder auditRecorder) *Service {
	return &Service{storage: storage, recorder: recorder}
}

// Get returns current version of kind, or the built in text as version 1 if nothing saved yet
func (s *Service) Get(ctx context.Context, kind models.ContentKind) (models.Content, error) {
	info, ok := kinds[kind]
	if !ok {
		return models.Content{}, apperrors.ErrContentNotFound
	}

	c, err := s.storage.Content().GetContent(ctx, kind, false)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, apperrors.ErrContentNotFound):
		return models.Content{Kind: kind, Body: info.fallback, Version: 1}, nil
	default:
		return c, fmt.Errorf("can't read %s. Err: %w", kind, err)
	}
}

// Update saves body as the next version, staff only
// Replaced version goes to history
func (s *Service) Update(ctx context.Context, actor models.Actor, kind models.ContentKind, body string) (models.Content, error) {
	if !actor.Role.IsStaff() {
		return models.Content{}, apperrors.ErrUnauthorized
	}
	info, ok := kinds[kind]
	if !ok {
		return models.Content{}, apperrors.ErrContentNotFound
	}

	var before *models.Content
	var saved models.Content

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		version := 1

		current, err := storage.Content().GetContent(ctx, kind, true)
		switch {
		case err == nil:
			if err := storage.Content().ArchiveContent(ctx, current); err != nil {
				return err
			}
			before = &current
			version = current.Version + 1
		case !errors.Is(err, apperrors.ErrContentNotFound):
			return err
		}

		saved, err = storage.Content().SaveContent(ctx, models.Content{
			Kind:      kind,
			Body:      body,
			Version:   version,
			UpdatedBy: &actor.UserID,
		})
		return err
	})
	if err != nil {
		return models.Content{}, fmt.Errorf("can't save %s. Err: %w", kind, err)
	}

	entry := models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  info.action,
		Details: map[string]any{"version": saved.Version},
		After:   audit.Snapshot(saved),
	}
	if before != nil {
		entry.Before = audit.Snapshot(*before)
	}
	s.recorder.Record(ctx, entry)

	return saved, nil
}

// History lists replaced versions of kind, newest first, staff only
func (s *Service) History(ctx context.Context, actor models.Actor, kind models.ContentKind) ([]models.Content, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.ErrUnauthorized
	}
	if _, ok := kinds[kind]; !ok {
		return nil, apperrors.ErrContentNotFound
	}

	list, err := s.storage.Content().ListContentVersions(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("can't list %s versions. Err: %w", kind, err)
	}
	return list, nil
}
