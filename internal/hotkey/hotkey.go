// Package hotkey turns a stream of global input events into visibility
// toggles. The gesture is a double tap of a designated key (Control by
// default) within a short window.
package hotkey

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.klb.dev/clipdeck/internal/state"
)

// DefaultWindow is the longest gap between two taps that still counts as a
// double tap.
const DefaultWindow = 300 * time.Millisecond

// Key codes reported by the global input hook for the Control keys.
const (
	CodeControlLeft  uint16 = 0x001D
	CodeControlRight uint16 = 0x0E1D
)

// DefaultCodes are the keys that arm the gesture when none are configured.
var DefaultCodes = []uint16{CodeControlLeft, CodeControlRight}

// ErrUnavailable is returned by Source.Events when global input capture is
// not supported by this build.
var ErrUnavailable = errors.New("global input capture unavailable")

// Kind classifies an Event.
type Kind uint8

const (
	KeyPress Kind = iota + 1
	KeyRelease
	PointerMove
)

func (k Kind) String() string {
	switch k {
	case KeyPress:
		return "press"
	case KeyRelease:
		return "release"
	case PointerMove:
		return "pointer"
	default:
		return "unknown"
	}
}

// Event is one global input event. Code is set for key events, X and Y for
// pointer moves.
type Event struct {
	Kind Kind
	Code uint16
	X, Y int
	At   time.Time
}

// Source delivers global input events until Close is called.
type Source interface {
	Events() (<-chan Event, error)
	Close()
}

// DoubleTap detects two physical presses within Window. Held keys generate
// repeated presses; those are ignored until the matching release. It is not
// safe for concurrent use.
type DoubleTap struct {
	Window time.Duration

	down bool
	last time.Time // zero when not armed
}

// NewDoubleTap returns a detector. A non-positive window falls back to
// DefaultWindow.
func NewDoubleTap(window time.Duration) *DoubleTap {
	if window <= 0 {
		window = DefaultWindow
	}
	return &DoubleTap{Window: window}
}

// Press records a press of the designated key at t and reports whether it
// completes a double tap.
func (d *DoubleTap) Press(t time.Time) bool {
	if d.down {
		return false
	}
	d.down = true

	if !d.last.IsZero() && t.Sub(d.last) < d.Window {
		d.last = time.Time{} // a third tap starts a new gesture
		return true
	}
	d.last = t
	return false
}

// Release records a release of the designated key.
func (d *DoubleTap) Release() { d.down = false }

// Toggler is the part of state.Coordinator the watcher drives.
type Toggler interface {
	Toggle(src state.Source) bool
	SetPointer(p state.Point)
}

// Watcher feeds events through a DoubleTap and toggles visibility on each
// gesture.
type Watcher struct {
	target Toggler
	tap    *DoubleTap
	now    func() time.Time
	codes  map[uint16]struct{}
}

// NewWatcher creates a watcher for the given key codes. An empty codes
// slice means DefaultCodes.
func NewWatcher(target Toggler, codes []uint16, window time.Duration) *Watcher {
	if len(codes) == 0 {
		codes = DefaultCodes
	}
	set := make(map[uint16]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return &Watcher{
		target: target,
		tap:    NewDoubleTap(window),
		now:    time.Now,
		codes:  set,
	}
}

// Run consumes events until ctx is cancelled or events is closed.
func (w *Watcher) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				slog.Debug("hotkey event stream closed")
				return
			}
			w.handle(ev)
		}
	}
}

func (w *Watcher) handle(ev Event) {
	switch ev.Kind {
	case PointerMove:
		w.target.SetPointer(state.Point{X: ev.X, Y: ev.Y})
	case KeyPress:
		if !w.watched(ev.Code) {
			return
		}
		at := ev.At
		if at.IsZero() {
			at = w.now()
		}
		if w.tap.Press(at) {
			v := w.target.Toggle(state.SourceHotkey)
			slog.Info("hotkey toggle", "visible", v)
		}
	case KeyRelease:
		if w.watched(ev.Code) {
			w.tap.Release()
		}
	}
}

func (w *Watcher) watched(code uint16) bool {
	_, ok := w.codes[code]
	return ok
}

// Start opens src and runs a watcher over it in the calling goroutine. If
// the source cannot be opened the failure is logged and Start returns, so
// the rest of the application keeps running without the hotkey.
func Start(ctx context.Context, src Source, w *Watcher) {
	events, err := src.Events()
	if err != nil {
		slog.Warn("hotkey listener disabled", "err", err)
		return
	}
	defer src.Close()

	slog.Info("hotkey listener started")
	w.Run(ctx, events)
}
