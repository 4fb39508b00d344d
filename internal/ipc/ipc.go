// Package ipc provides the local socket that the clipdeck daemon listens on
// and the CLI sub-commands dial. It is a Unix domain socket on Linux and
// macOS and a named pipe on Windows.
package ipc

import (
	"fmt"
	"net"
	"os"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/clipdeck.sock, else $TMPDIR/clipdeck.sock
//   - macOS:   $TMPDIR/clipdeck.sock
//   - Windows: \\.\pipe\clipdeck
//
// $CLIPDECK_SOCKET overrides all of these.
func SocketPath() string {
	if s := os.Getenv("CLIPDECK_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on path. It
// does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := dialIPC(path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path. A stale socket left by a crashed run is
// removed first, but a live daemon is never displaced.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("listen %s: another clipdeck is already running", path)
	}
	removeStale(path)
	ln, err := listenIPC(path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return ln, nil
}

// Dial connects to the daemon at path.
func Dial(path string) (net.Conn, error) {
	c, err := dialIPC(path)
	if err != nil {
		return nil, fmt.Errorf("connect to clipdeck at %s (is `clipdeck run` active?): %w", path, err)
	}
	return c, nil
}
