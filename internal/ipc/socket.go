package ipc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
)

// SocketPath resolves the daemon's IPC socket path following spec §6's
// precedence: an explicit override, then $XDG_RUNTIME_DIR, then a
// per-uid fallback under the OS temp directory.
func SocketPath(override, appName string) string {
	if override != "" {
		return override
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName, "daemon.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d", appName, os.Getuid()), "daemon.sock")
}

// Listen binds a Unix domain socket at path, creating its parent
// directory first and narrowing the socket's permissions via umask
// around the bind call itself (spec §4.H) so there is no window where
// the socket exists world-writable before Chmod would otherwise catch
// up. Not supported on Windows; a named-pipe listener would replace
// this on that build target.
func Listen(path string) (net.Listener, error) {
	if runtime.GOOS == "windows" {
		return nil, fmt.Errorf("ipc: unix domain sockets not supported on windows, use a named pipe listener")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	// A stale socket file from an unclean shutdown prevents bind;
	// removing it is safe because a *live* daemon holding it would
	// still accept connections, and two daemons racing for the same
	// socket is a config error the operator must fix regardless.
	_ = os.Remove(path)

	old := syscall.Umask(0o177)
	ln, err := net.Listen("unix", path)
	syscall.Umask(old)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", path, err)
	}
	return ln, nil
}

// Dial connects to the daemon's socket at path.
func Dial(path string) (net.Conn, error) {
	return net.Dial("unix", path)
}
