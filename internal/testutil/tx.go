package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx runs fn inside a transaction that is always rolled back.
// Passing pgx.Tx as db opens a savepoint.
func InTx(db beginner, t *testing.T, fn func(tx pgx.Tx)) {
	t.Helper()

	tx, err := db.Begin(t.Context())
	require.NoError(t, err)
	defer func() {
		require.NoError(t, tx.Rollback(t.Context()), "rollback of test transaction")
	}()

	fn(tx)
}
