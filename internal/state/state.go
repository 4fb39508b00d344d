// Package state coordinates the goroutines that share the clipboard history
// and the visibility flag.
//
// Producers (clipboard poller, hotkey watcher, tray watcher, control socket)
// mutate state through a Coordinator and then wake the single consumer, the
// UI loop. The consumer never depends on the wake alone: it also re-reads the
// visibility flag on a short fixed period, so a lost or coalesced wake delays
// it by at most one period.
//
// Locking discipline: the history lock and the visibility lock are each held
// for one read-modify-write step only. Neither is held across I/O; snapshots
// are encoded under the lock and written after it is released.
package state

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.klb.dev/clipdeck/internal/history"
	"go.klb.dev/clipdeck/internal/persist"
)

// Source identifies who changed the visibility flag. Used for logging.
type Source string

const (
	SourceHotkey  Source = "hotkey"
	SourceTray    Source = "tray"
	SourceUI      Source = "ui"
	SourceControl Source = "control"
)

// Point is a global pointer position in screen coordinates.
type Point struct {
	X, Y int
}

// Surface is the platform capability to force the view on or off screen from
// outside the consumer. Some display layers stop delivering frames to a
// hidden view; ForceShow gives them a way back.
type Surface interface {
	ForceShow(at Point)
	ForceHide()
}

// NopSurface is a Surface that does nothing.
type NopSurface struct{}

func (NopSurface) ForceShow(Point) {}
func (NopSurface) ForceHide()      {}

// Persister stores an encoded history document.
type Persister interface {
	Persist(data []byte) error
}

// Options configures a Coordinator. Zero fields get no-op defaults.
type Options struct {
	Persister Persister
	Surface   Surface
	Waker     Waker
}

// Coordinator owns the shared cells.
type Coordinator struct {
	mu    sync.Mutex
	hist  *history.Store
	gen   uint64 // bumped on every history change, under mu
	saved uint64 // last generation written, under saveMu

	saveMu sync.Mutex

	visible Flag
	pointer atomic.Pointer[Point]

	persister Persister
	surface   Surface
	waker     Waker
	signal    *Signal
}

// New wraps hist. The Coordinator takes ownership; callers must not touch
// hist afterwards.
func New(hist *history.Store, opts Options) *Coordinator {
	c := &Coordinator{
		hist:      hist,
		persister: opts.Persister,
		surface:   opts.Surface,
		waker:     opts.Waker,
		signal:    NewSignal(),
	}
	if c.surface == nil {
		c.surface = NopSurface{}
	}
	if c.waker == nil {
		c.waker = c.signal
	}
	c.pointer.Store(&Point{})
	return c
}

// Wakeups returns the channel the consumer waits on between polls. It only
// carries signals when no custom Waker was configured.
func (c *Coordinator) Wakeups() <-chan struct{} { return c.signal.C() }

// PushText records text in the history. When the history changes, the new
// document is persisted and then the consumer is woken, so a consumer woken
// by this call always sees the entry. A persist failure is returned but the
// in-memory history stays authoritative; the next successful push rewrites
// the whole document.
func (c *Coordinator) PushText(text string) (bool, error) {
	c.mu.Lock()
	if !c.hist.Push(text) {
		c.mu.Unlock()
		return false, nil
	}
	c.gen++
	gen := c.gen
	var (
		data   []byte
		encErr error
	)
	if c.persister != nil {
		data, encErr = persist.Encode(c.hist)
	}
	n := c.hist.Len()
	c.mu.Unlock()

	slog.Debug("history updated", "entries", n, "generation", gen)

	err := encErr
	if err == nil {
		err = c.save(gen, data)
	}
	if err != nil {
		slog.Error("history persist failed", "err", err)
	}

	c.waker.Wake()
	return true, err
}

// save writes data unless a newer generation has already been written.
func (c *Coordinator) save(gen uint64, data []byte) error {
	if c.persister == nil {
		return nil
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if gen <= c.saved {
		return nil
	}
	if err := c.persister.Persist(data); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	c.saved = gen
	return nil
}

// Snapshot returns a copy of the history, newest first.
func (c *Coordinator) Snapshot() []history.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist.Entries()
}

// Get looks up an entry by id.
func (c *Coordinator) Get(id uint64) (history.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist.Get(id)
}

// Visible reports whether the interactive view should be shown.
func (c *Coordinator) Visible() bool { return c.visible.Get() }

// SetVisible overwrites the flag. The consumer uses it to hide itself after
// a selection or escape, so it does not wake anyone.
func (c *Coordinator) SetVisible(v bool) { c.visible.Set(v) }

// Toggle flips the visibility flag, nudges the surface and wakes the
// consumer. Concurrent toggles are last-writer-wins.
func (c *Coordinator) Toggle(src Source) bool {
	v := c.visible.Toggle()
	slog.Debug("visibility toggled", "source", src, "visible", v)

	if v {
		c.surface.ForceShow(c.Pointer())
	} else {
		c.surface.ForceHide()
	}
	c.waker.Wake()
	return v
}

// SetPointer records the latest global pointer position.
func (c *Coordinator) SetPointer(p Point) { c.pointer.Store(&p) }

// Pointer returns the latest global pointer position.
func (c *Coordinator) Pointer() Point { return *c.pointer.Load() }
