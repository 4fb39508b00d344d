//go:build !windows

package ipc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortSocket keeps the path under the sun_path limit on macOS.
func shortSocket(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "cd")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestSocketPath_EnvOverride(t *testing.T) {
	t.Setenv("CLIPDECK_SOCKET", "/tmp/custom.sock")
	assert.Equal(t, "/tmp/custom.sock", SocketPath())
}

func TestSocketPath_RuntimeDir(t *testing.T) {
	t.Setenv("CLIPDECK_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/clipdeck.sock", SocketPath())
}

func TestListenDial(t *testing.T) {
	path := shortSocket(t)
	assert.False(t, IsRunning(path))

	ln, err := Listen(path)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err == nil {
			_ = c.Close()
		}
	}()

	c, err := Dial(path)
	require.NoError(t, err)
	_ = c.Close()
}

func TestListen_RefusesLiveDaemon(t *testing.T) {
	path := shortSocket(t)
	ln, err := Listen(path)
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	_, err = Listen(path)
	assert.ErrorContains(t, err, "already running")
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	path := shortSocket(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ln, err := Listen(path)
	require.NoError(t, err)
	_ = ln.Close()
}

func TestDial_NoDaemon(t *testing.T) {
	_, err := Dial(shortSocket(t))
	assert.ErrorContains(t, err, "clipdeck run")
}
