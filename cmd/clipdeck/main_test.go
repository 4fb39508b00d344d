//go:build !windows

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipdeck/internal/control"
	"go.klb.dev/clipdeck/internal/history"
	"go.klb.dev/clipdeck/internal/ipc"
	"go.klb.dev/clipdeck/internal/message"
	"go.klb.dev/clipdeck/internal/state"
	"go.klb.dev/clipdeck/internal/tray"
)

// daemon serves a control socket backed by an in-memory coordinator.
func daemon(t *testing.T) (string, *state.Coordinator, chan tray.Event) {
	t.Helper()
	dir, err := os.MkdirTemp("", "cdm")
	require.NoError(t, err)
	path := filepath.Join(dir, "s.sock")

	ln, err := ipc.Listen(path)
	require.NoError(t, err)

	coord := state.New(history.New(10), state.Options{})
	menu := make(chan tray.Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = control.NewServer(coord, menu).Serve(ctx, ln)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = os.RemoveAll(dir)
	})
	return path, coord, menu
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPushAndList(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // keep real config files out
	sock, coord, _ := daemon(t)

	_, err := execute(t, "", "push", "--socket", sock, "hello", "world")
	require.NoError(t, err)
	_, err = execute(t, "from stdin\n", "push", "--socket", sock)
	require.NoError(t, err)

	snap := coord.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "from stdin", snap[0].Content)
	assert.Equal(t, "hello world", snap[1].Content)

	out, err := execute(t, "", "list", "--socket", sock, "--json", "-q", "hlo")
	require.NoError(t, err)
	var entries []message.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "hello world", entries[0].Content)

	out, err = execute(t, "", "list", "--socket", sock, "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "from stdin")
	assert.NotContains(t, out, "hello world")
}

func TestPush_Empty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	sock, _, _ := daemon(t)

	_, err := execute(t, "", "push", "--socket", sock)
	assert.ErrorContains(t, err, "nothing to push")
}

func TestToggleAndQuit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	sock, _, menu := daemon(t)

	_, err := execute(t, "", "toggle", "--socket", sock)
	require.NoError(t, err)
	_, err = execute(t, "", "quit", "--socket", sock)
	require.NoError(t, err)

	assert.Equal(t, tray.Toggle, (<-menu).Kind)
	select {
	case ev := <-menu:
		assert.Equal(t, tray.Quit, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("quit not delivered")
	}
}

func TestClient_NoDaemon(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := execute(t, "", "toggle", "--socket", filepath.Join(t.TempDir(), "none.sock"))
	assert.ErrorContains(t, err, "clipdeck run")
}

func TestPushText(t *testing.T) {
	got, err := pushText(strings.NewReader("ignored"), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a b", got)

	got, err = pushText(strings.NewReader("line\r\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "line", got)

	got, err = pushText(strings.NewReader("keep\n\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "keep\n", got, "only one trailing newline is dropped")
}

func TestPrintTable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, []message.Entry{
		{ID: 7, Content: "multi\nline", CreatedAt: now.Add(-90 * time.Second)},
		{ID: 3, Content: "old", CreatedAt: now.Add(-50 * time.Hour)},
	}, now))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1m ago")
	assert.Contains(t, lines[0], "multi line")
	assert.Contains(t, lines[1], "2d ago")
}

func TestPrintJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "clipdeck dev\n", out)
}
