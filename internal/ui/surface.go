package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"go.klb.dev/clipdeck/internal/state"
)

// ProgramSurface implements state.Surface for a running bubbletea program.
// Messages are sent from a fresh goroutine so producers never block on the
// UI loop.
type ProgramSurface struct {
	p atomic.Pointer[tea.Program]
}

// Attach sets the program that receives show and hide requests. Requests
// made before Attach are dropped; the poll picks the change up instead.
func (s *ProgramSurface) Attach(p *tea.Program) { s.p.Store(p) }

func (s *ProgramSurface) ForceShow(at state.Point) { s.send(showMsg{at: at}) }

func (s *ProgramSurface) ForceHide() { s.send(hideMsg{}) }

func (s *ProgramSurface) send(msg tea.Msg) {
	p := s.p.Load()
	if p == nil {
		return
	}
	go p.Send(msg)
}
