package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/bankledger/internal/testutil"
)

func Test_run(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	noenv := func(string) string { return "" }
	wd := func() (string, error) { return t.TempDir(), nil }

	listenAddr := testutil.FreeListenAddr(t)

	t.Run("stop with signal", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noenv, wd, []string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--environment", "dev",
			"--database", pg.DSN,
			"--secret-key", "secret",
		})

		require.NoError(t, err, "on correct stop should not return error")
	})

	t.Run("serves requests", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		done := make(chan error, 1)
		go func() {
			done <- run(ctx, noenv, wd, []string{
				"--address", listenAddr,
				"--database", pg.DSN,
				"--secret-key", "secret",
			})
		}()

		require.EventuallyWithT(t, func(c *assert.CollectT) {
			resp, err := http.Get("http://" + listenAddr + "/api/auth/me")
			if !assert.NoError(c, err) {
				return
			}
			defer resp.Body.Close() // nolint:errcheck
			assert.Equal(c, http.StatusUnauthorized, resp.StatusCode)
		}, 5*time.Second, 50*time.Millisecond)

		cancel()
		require.NoError(t, <-done)
	})

	t.Run("stop with srv error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		// Try to run without secret key. Must fail
		err := run(ctx, noenv, wd, []string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--database", pg.DSN,
		})

		require.Error(t, err, "on incorrect stop should return error")
	})

	t.Run("unknown environment", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		t.Cleanup(cancel)

		err := run(ctx, noenv, wd, []string{
			"--address", listenAddr,
			"--database", pg.DSN,
			"--secret-key", "secret",
			"--environment", "staging",
		})

		require.Error(t, err)
	})
}
