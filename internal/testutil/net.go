package testutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// FreeListenAddr returns loopback address with a port nobody listens on right now
func FreeListenAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	return addr
}
