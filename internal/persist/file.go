package persist

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.klb.dev/clipdeck/internal/history"
)

const (
	appDir   = "clipdeck"
	fileName = "history.json"
)

// DefaultPath returns the per-user history location,
// e.g. ~/.config/clipdeck/history.json on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// File is the on-disk home of one history document.
type File struct {
	Path string
}

// NewFile returns a File at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads and decodes the history file. It never fails: an absent or
// unreadable file yields an empty store bounded to maxSize.
func (f *File) Load(maxSize int) *history.Store {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("history file unreadable, starting empty", "path", f.Path, "err", err)
		}
		return history.New(maxSize)
	}
	return Decode(data, maxSize)
}

// Persist replaces the history file with data. The write goes to a temp file
// in the same directory which is then renamed over the target, so a failed
// write never leaves a truncated document behind.
func (f *File) Persist(data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
