//go:build cgo && (linux || darwin || windows)

package hooksource

import (
	"fmt"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"go.klb.dev/clipdeck/internal/hotkey"
)

// The hook entry points, replaced in tests.
var (
	startHook = hook.Start
	endHook   = hook.End
)

// enableTimeout bounds the wait for the hook to report that it is running.
// libuiohook fails inside C (no display, no accessibility permission) and
// only the missing HookEnabled event tells Go about it.
var enableTimeout = time.Second

// source captures global input through libuiohook. Only one can be active
// per process.
type source struct {
	once sync.Once
	out  chan hotkey.Event
	done chan struct{}
}

// New returns the platform input source.
func New() hotkey.Source {
	return &source{done: make(chan struct{})}
}

func (s *source) Events() (<-chan hotkey.Event, error) {
	raw := startHook()
	if err := awaitEnabled(raw, enableTimeout); err != nil {
		s.Close()
		return nil, err
	}
	s.out = make(chan hotkey.Event, 64)
	go s.pump(raw)
	return s.out, nil
}

func awaitEnabled(raw chan hook.Event, timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	for {
		select {
		case e, ok := <-raw:
			if !ok {
				return fmt.Errorf("%w: input hook stopped before it was enabled", hotkey.ErrUnavailable)
			}
			if e.Kind == hook.HookEnabled {
				return nil
			}
		case <-t.C:
			return fmt.Errorf("%w: input hook not enabled after %s", hotkey.ErrUnavailable, timeout)
		}
	}
}

// pump translates hook events. KeyHold is the physical press in gohook's
// model (KeyDown only fires for keys that produce a character).
func (s *source) pump(raw chan hook.Event) {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case e, ok := <-raw:
			if !ok {
				return
			}
			ev, keep := translate(e)
			if !keep {
				continue
			}
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}
	}
}

func translate(e hook.Event) (hotkey.Event, bool) {
	at := e.When
	if at.IsZero() {
		at = time.Now()
	}
	switch e.Kind {
	case hook.KeyHold:
		return hotkey.Event{Kind: hotkey.KeyPress, Code: e.Keycode, At: at}, true
	case hook.KeyUp:
		return hotkey.Event{Kind: hotkey.KeyRelease, Code: e.Keycode, At: at}, true
	case hook.MouseMove, hook.MouseDrag:
		return hotkey.Event{Kind: hotkey.PointerMove, X: int(e.X), Y: int(e.Y), At: at}, true
	}
	return hotkey.Event{}, false
}

// Close stops the hook. It is safe to call more than once.
func (s *source) Close() {
	s.once.Do(func() {
		close(s.done)
		endHook()
	})
}
