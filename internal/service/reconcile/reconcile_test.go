package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/bankledger/internal/logger"
)

type fakeLister struct {
	refs  []string
	err   error
	calls atomic.Int32
}

func (f *fakeLister) ListUnpairedReferences(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	return f.refs, f.err
}

func TestReconciler_Check(t *testing.T) {
	t.Run("unpaired found", func(t *testing.T) {
		r := New(0, &fakeLister{refs: []string{"PB20250101AAAAAAAA", "PB20250101BBBBBBBB"}}, logger.NewNoOpLogger())

		refs, err := r.Check(t.Context())

		require.NoError(t, err)
		require.Len(t, refs, 2)
		require.Equal(t, float64(2), promtest.ToFloat64(unpairedReferences))
	})

	t.Run("ledger is consistent", func(t *testing.T) {
		r := New(0, &fakeLister{}, logger.NewNoOpLogger())

		refs, err := r.Check(t.Context())

		require.NoError(t, err)
		require.Empty(t, refs)
		require.Equal(t, float64(0), promtest.ToFloat64(unpairedReferences))
	})

	t.Run("storage error", func(t *testing.T) {
		r := New(0, &fakeLister{err: errors.New("db is down")}, logger.NewNoOpLogger())

		_, err := r.Check(t.Context())

		require.Error(t, err)
	})
}

func TestReconciler_Run(t *testing.T) {
	t.Run("default interval", func(t *testing.T) {
		r := New(0, &fakeLister{}, logger.NewNoOpLogger())

		require.Equal(t, defaultInterval, r.interval)
	})

	t.Run("ticks until stopped", func(t *testing.T) {
		lister := &fakeLister{}
		r := New(10*time.Millisecond, lister, logger.NewNoOpLogger())
		ctx, cancel := context.WithCancel(t.Context())

		stopped := r.Run(ctx)

		require.Eventually(t, func() bool { return lister.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("reconciler has to stop when context is done")
		}
	})
}
