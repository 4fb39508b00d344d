// Package poller implements the clipboard producer: it samples the system
// clipboard on a fixed interval and pushes new text into the history.
package poller

import (
	"context"
	"log/slog"
	"time"

	"go.klb.dev/clipdeck/internal/clip"
	"go.klb.dev/clipdeck/internal/history"
)

// DefaultInterval matches the clipboard sampling rate of the desktop app.
const DefaultInterval = 500 * time.Millisecond

// Pusher receives clipboard text. state.Coordinator implements it.
type Pusher interface {
	PushText(text string) (bool, error)
}

// Poller samples a clip.Backend and forwards changes to a Pusher.
type Poller struct {
	backend  clip.Backend
	pusher   Pusher
	interval time.Duration

	last string
}

// New creates a poller. A non-positive interval falls back to DefaultInterval.
func New(backend clip.Backend, pusher Pusher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{backend: backend, pusher: pusher, interval: interval}
}

// Run polls until ctx is cancelled. The text already on the clipboard at
// start-up is remembered but not pushed.
func (p *Poller) Run(ctx context.Context) {
	if text, err := p.backend.ReadText(); err == nil {
		p.last = text
	}

	slog.Info("clipboard poller started", "backend", p.backend.Name(), "interval", p.interval)

	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.tick()
		}
	}
}

// tick performs one sample. Read errors are transient: skip this tick.
func (p *Poller) tick() {
	text, err := p.backend.ReadText()
	if err != nil {
		slog.Debug("clipboard read failed", "err", err)
		return
	}
	if text == "" || text == p.last {
		return
	}
	p.last = text

	changed, err := p.pusher.PushText(text)
	if err != nil {
		// PushText has already logged; the entry is in memory regardless.
		return
	}
	if changed {
		slog.Debug("clipboard captured", "preview", history.Preview(text, 120))
	}
}
