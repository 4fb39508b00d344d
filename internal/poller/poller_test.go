package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipdeck/internal/history"
	"go.klb.dev/clipdeck/internal/state"
)

// fakeBackend is a clipboard whose content the test sets directly.
type fakeBackend struct {
	mu   sync.Mutex
	text string
	err  error
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) ReadText() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, b.err
}

func (b *fakeBackend) WriteText(text string) error {
	b.set(text, nil)
	return nil
}

func (b *fakeBackend) Close() {}

func (b *fakeBackend) set(text string, err error) {
	b.mu.Lock()
	b.text, b.err = text, err
	b.mu.Unlock()
}

type countingPusher struct {
	pushed []string
	store  *history.Store
}

func (p *countingPusher) PushText(text string) (bool, error) {
	p.pushed = append(p.pushed, text)
	return p.store.Push(text), nil
}

func TestTick(t *testing.T) {
	b := &fakeBackend{}
	pusher := &countingPusher{store: history.New(10)}
	p := New(b, pusher, time.Second)

	b.set("one", nil)
	p.tick()
	p.tick() // same text: not forwarded again

	b.set("", nil)
	p.tick() // empty: ignored

	b.set("two", errors.New("busy"))
	p.tick() // transient error: skipped

	b.set("two", nil)
	p.tick()

	b.set("one", nil)
	p.tick() // differs from last seen, store moves it to front

	require.Equal(t, []string{"one", "two", "one"}, pusher.pushed)
	entries := pusher.store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Content)
}

func TestRun_PrimesWithoutPushing(t *testing.T) {
	b := &fakeBackend{text: "already there"}
	c := state.New(history.New(10), state.Options{})
	p := New(b, c, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, c.Snapshot(), "startup clipboard is not captured")

	b.set("fresh copy", nil)
	select {
	case <-c.Wakeups():
	case <-time.After(time.Second):
		t.Fatal("poller never pushed")
	}

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "fresh copy", snap[0].Content)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	p := New(&fakeBackend{}, &countingPusher{store: history.New(1)}, 0)
	assert.Equal(t, DefaultInterval, p.interval)
}
