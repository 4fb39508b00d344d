//go:build darwin || windows || linux

package clip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

type systemBackend struct{}

// New returns the platform clipboard backend. clipboard.Init is called here
// rather than in init() so that CLI sub-commands that never touch the
// clipboard (toggle, list, ...) don't fail on headless systems.
func New() (Backend, error) {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return Headless(), fmt.Errorf("clipboard init: %w", initErr)
	}
	return systemBackend{}, nil
}

func (systemBackend) Name() string { return "system clipboard" }

func (systemBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (systemBackend) WriteText(text string) error {
	// Write returns a channel that fires when another program takes
	// ownership; we don't care.
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (systemBackend) Close() {}
