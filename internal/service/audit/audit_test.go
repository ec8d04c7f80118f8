package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) CreateEntry(ctx context.Context, entry models.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepo) ListEntries(ctx context.Context, opts repository.ListAuditOpts) ([]models.AuditEntry, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEntry), args.Error(1)
}

func TestRecorder_Record(t *testing.T) {
	t.Run("write entry", func(t *testing.T) {
		repo := new(MockAuditRepo)
		r := NewRecorder(repo, logger.NewNoOpLogger())
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		r.now = func() time.Time { return now }
		actor := uuid.New()

		repo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
			return e.Action == models.AuditInternalTransfer && *e.ActorID == actor && e.CreatedAt.Equal(now)
		})).Return(nil)
		before := promtest.ToFloat64(writeFailures)

		r.Record(t.Context(), models.AuditEntry{ActorID: &actor, Action: models.AuditInternalTransfer})

		repo.AssertExpectations(t)
		assert.Equal(t, before, promtest.ToFloat64(writeFailures), "failure counter must stay untouched")
	})

	t.Run("failure is counted not returned", func(t *testing.T) {
		repo := new(MockAuditRepo)
		r := NewRecorder(repo, logger.NewNoOpLogger())
		repo.On("CreateEntry", mock.Anything, mock.Anything).Return(errors.New("db is down"))
		before := promtest.ToFloat64(writeFailures)

		r.Record(t.Context(), models.AuditEntry{Action: models.AuditSettingsUpdated})

		repo.AssertExpectations(t)
		assert.Equal(t, before+1, promtest.ToFloat64(writeFailures))
	})

	t.Run("written even if request context is canceled", func(t *testing.T) {
		repo := new(MockAuditRepo)
		r := NewRecorder(repo, logger.NewNoOpLogger())
		repo.On("CreateEntry", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), mock.Anything).Return(nil)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		r.Record(ctx, models.AuditEntry{Action: models.AuditLoginSuccessful})

		repo.AssertExpectations(t)
	})
}

func TestRecorder_List(t *testing.T) {
	t.Run("customer not allowed", func(t *testing.T) {
		r := NewRecorder(new(MockAuditRepo), logger.NewNoOpLogger())

		_, err := r.List(t.Context(), models.Actor{Role: models.RoleCustomer}, repository.ListAuditOpts{})

		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("default limit", func(t *testing.T) {
		repo := new(MockAuditRepo)
		r := NewRecorder(repo, logger.NewNoOpLogger())
		entries := []models.AuditEntry{{Action: models.AuditAccountCreated}}
		repo.On("ListEntries", mock.Anything, repository.ListAuditOpts{Action: models.AuditAccountCreated, Limit: 100}).Return(entries, nil)

		got, err := r.List(t.Context(), models.Actor{Role: models.RoleAdmin}, repository.ListAuditOpts{Action: models.AuditAccountCreated})

		require.NoError(t, err)
		require.Equal(t, entries, got)
		repo.AssertExpectations(t)
	})
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot(map[string]string{"status": "pending"})
	require.JSONEq(t, `{"status":"pending"}`, string(snap))

	require.Nil(t, Snapshot(make(chan int)), "not encodable value gives empty snapshot")
}
