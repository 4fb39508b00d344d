// Package tray handles menu selections: show/hide and quit. The events arrive
// from whatever front end offers the menu; in clipdeck that is the control
// socket.
package tray

import (
	"context"
	"log/slog"

	"go.klb.dev/clipdeck/internal/state"
)

// Kind is a menu item.
type Kind int

const (
	Toggle Kind = iota + 1
	Quit
)

func (k Kind) String() string {
	switch k {
	case Toggle:
		return "toggle"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Event is one menu selection.
type Event struct {
	Kind Kind
}

// Toggler flips visibility. state.Coordinator implements it.
type Toggler interface {
	Toggle(src state.Source) bool
}

// Watcher dispatches menu events.
type Watcher struct {
	target Toggler
	quit   func()
}

// NewWatcher creates a watcher. quit is called once per Quit event and
// should end the process; a nil quit is ignored.
func NewWatcher(target Toggler, quit func()) *Watcher {
	if quit == nil {
		quit = func() {}
	}
	return &Watcher{target: target, quit: quit}
}

// Run consumes events until ctx is cancelled or events is closed.
func (w *Watcher) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.handle(ev)
		}
	}
}

func (w *Watcher) handle(ev Event) {
	switch ev.Kind {
	case Toggle:
		v := w.target.Toggle(state.SourceTray)
		slog.Info("menu toggle", "visible", v)
	case Quit:
		slog.Info("menu quit")
		w.quit()
	default:
		slog.Warn("unknown menu event", "kind", int(ev.Kind))
	}
}
