//go:build !cgo || !(linux || darwin || windows)

package hooksource

import "go.klb.dev/clipdeck/internal/hotkey"

type unavailable struct{}

// New returns a source that always fails: this build has no global input
// hook.
func New() hotkey.Source { return unavailable{} }

func (unavailable) Events() (<-chan hotkey.Event, error) { return nil, hotkey.ErrUnavailable }
func (unavailable) Close()                               {}
