// Package control serves the daemon's local socket. It turns one-shot
// requests from the CLI into menu events and history operations.
package control

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.klb.dev/clipdeck/internal/history"
	"go.klb.dev/clipdeck/internal/message"
	"go.klb.dev/clipdeck/internal/rank"
	"go.klb.dev/clipdeck/internal/tray"
	"go.klb.dev/clipdeck/internal/wire"
)

const (
	readTimeout = 5 * time.Second
	menuTimeout = 2 * time.Second
)

// Store is the part of state.Coordinator the server uses.
type Store interface {
	PushText(text string) (bool, error)
	Snapshot() []history.Entry
}

// Server answers control requests. TOGGLE and QUIT become tray events on
// the menu channel; PUSH and LIST go to the store.
type Server struct {
	store Store
	menu  chan<- tray.Event

	wg sync.WaitGroup
}

// NewServer creates a server.
func NewServer(store Store, menu chan<- tray.Event) *Server {
	return &Server{store: store, menu: menu}
}

// Serve accepts connections until ctx is cancelled, then closes ln and waits
// for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	slog.Info("control socket listening", "addr", ln.Addr().String())
	defer s.wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	wc.SetReadDeadline(readTimeout)
	msg, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("control: read failed", "err", err)
		return
	}
	wc.SetReadDeadline(0)

	slog.Debug("control: request", "type", msg.Type)
	switch msg.Type {
	case message.TypeToggle:
		if err := s.deliver(ctx, tray.Toggle); err != nil {
			_ = wc.WriteMsg(message.Errorf("toggle: %v", err))
			return
		}
		_ = wc.WriteMsg(&message.Message{Type: message.TypeOK})

	case message.TypeQuit:
		// Reply first: the process may be gone once the event is handled.
		_ = wc.WriteMsg(&message.Message{Type: message.TypeOK})
		if err := s.deliver(ctx, tray.Quit); err != nil {
			slog.Warn("control: quit not delivered", "err", err)
		}

	case message.TypePush:
		changed, err := s.store.PushText(msg.Text)
		if err != nil {
			// The entry is in memory; only the write failed.
			_ = wc.WriteMsg(message.Errorf("persist: %v", err))
			return
		}
		_ = wc.WriteMsg(&message.Message{Type: message.TypeOK, Changed: changed})

	case message.TypeList:
		_ = wc.WriteMsg(&message.Message{
			Type:    message.TypeHistory,
			Entries: List(s.store.Snapshot(), msg.Query, msg.Limit),
		})

	default:
		_ = wc.WriteMsg(message.Errorf("unsupported request %q", msg.Type))
	}
}

func (s *Server) deliver(ctx context.Context, kind tray.Kind) error {
	t := time.NewTimer(menuTimeout)
	defer t.Stop()
	select {
	case s.menu <- tray.Event{Kind: kind}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return errors.New("menu handler busy")
	}
}

// List ranks entries against query and converts them to wire entries. An
// empty query keeps recency order. A positive limit caps the result.
func List(entries []history.Entry, query string, limit int) []message.Entry {
	results := rank.Search(query, entries)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]message.Entry, len(results))
	for i, r := range results {
		out[i] = message.Entry{
			ID:        r.Entry.ID,
			Content:   r.Entry.Content,
			CreatedAt: r.Entry.CreatedAt,
			Score:     r.Score,
		}
	}
	return out
}
