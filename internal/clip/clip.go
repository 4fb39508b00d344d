// Package clip provides text access to the system clipboard across
// platforms. Build constraints select the implementation:
//
//	clip_system.go   macOS / Windows / Linux via golang.design/x/clipboard
//	clip_other.go    other platforms, always unavailable
//
// When the platform clipboard cannot be initialised (no display server,
// cgo disabled, container) New returns a headless backend together with the
// init error, so callers can log it and run without clipboard capture.
package clip

import "errors"

// ErrUnavailable is returned by the headless backend.
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the current clipboard text. An empty string with a nil
	// error means the clipboard holds no text.
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// Close releases any resources held by the backend.
	Close()
}

// headlessBackend is the fallback for environments without a clipboard.
// Reads and writes fail with ErrUnavailable.
type headlessBackend struct{}

// Headless returns a backend that has no clipboard.
func Headless() Backend { return headlessBackend{} }

func (headlessBackend) Name() string              { return "headless (no clipboard)" }
func (headlessBackend) ReadText() (string, error) { return "", ErrUnavailable }
func (headlessBackend) WriteText(string) error    { return ErrUnavailable }
func (headlessBackend) Close()                    {}
