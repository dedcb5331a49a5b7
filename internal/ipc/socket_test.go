package ipc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketPath_OverrideWins(t *testing.T) {
	assert.Equal(t, "/custom/path.sock", SocketPath("/custom/path.sock", "mira"))
}

func TestSocketPath_UsesXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/mira/daemon.sock", SocketPath("", "mira"))
}

func TestSocketPath_FallsBackToTempDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	path := SocketPath("", "mira")
	assert.True(t, filepath.IsAbs(path))
	assert.Contains(t, path, "daemon.sock")
}

func TestListen_CreatesSocketAndDial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daemon.sock")
	ln, err := Listen(path)
	require.NoError(t, err)
	defer ln.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode())

	conn, err := Dial(path)
	require.NoError(t, err)
	defer conn.Close()
}

func TestListen_RemovesStaleSocketFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.sock")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	ln, err := Listen(path)
	require.NoError(t, err)
	defer ln.Close()
}
