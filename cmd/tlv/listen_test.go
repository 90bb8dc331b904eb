package main

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListen_TCP(t *testing.T) {
	ln, err := listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	require.Equal(t, "tcp", ln.Addr().Network())
}

func TestListen_UnixReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tlv.sock")

	stale, err := net.Listen("unix", path)
	require.NoError(t, err)
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, stale.Close())

	ln, err := listen("unix://" + path)
	require.NoError(t, err)
	defer ln.Close()
	require.Equal(t, path, ln.Addr().String())
}
