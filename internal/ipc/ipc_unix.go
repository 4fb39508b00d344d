//go:build !windows

package ipc

import (
	"net"
	"os"
	"path/filepath"
)

func socketPath() string {
	// Linux: prefer XDG_RUNTIME_DIR
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipdeck.sock")
	}
	// macOS / fallback
	return filepath.Join(os.TempDir(), "clipdeck.sock")
}

func removeStale(path string) { _ = os.Remove(path) }

func listenIPC(path string) (net.Listener, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	// The socket accepts history contents; keep it private to the user.
	_ = os.Chmod(path, 0o600)
	return ln, nil
}

func dialIPC(path string) (net.Conn, error) {
	return net.Dial("unix", path)
}
