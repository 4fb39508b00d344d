// Package config holds the typed daemon configuration. Values are bound by
// the CLI through viper; this package only knows key names, defaults and
// validation rules.
package config

import (
	"fmt"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/spf13/viper"

	"go.klb.dev/clipdeck/internal/history"
	"go.klb.dev/clipdeck/internal/hotkey"
	"go.klb.dev/clipdeck/internal/poller"
)

// Keys shared by flags, env vars (CLIPDECK_MAX_SIZE, ...) and the config
// file.
const (
	KeyMaxSize         = "max-size"
	KeyPollInterval    = "poll-interval"
	KeyWindowWidth     = "window-width"
	KeyWindowHeight    = "window-height"
	KeyDoubleTapWindow = "double-tap-window"
	KeyUIPoll          = "ui-poll"
	KeyHotkeyCodes     = "hotkey-codes"
	KeyHistoryFile     = "history-file"
	KeyLogFile         = "log-file"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
)

// Cell size used to turn the window size in pixels into terminal cells.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Config is the resolved daemon configuration.
type Config struct {
	MaxSize         int
	PollInterval    time.Duration
	WindowWidth     int // pixels
	WindowHeight    int // pixels
	DoubleTapWindow time.Duration
	UIPoll          time.Duration
	HotkeyCodes     []int
	HistoryFile     string // empty means the per-user default
	LogFile         string // empty means the per-user default
	LogLevel        string
	LogFormat       string
}

// Default returns the built-in configuration.
func Default() Config {
	codes := make([]int, len(hotkey.DefaultCodes))
	for i, c := range hotkey.DefaultCodes {
		codes[i] = int(c)
	}
	return Config{
		MaxSize:         history.DefaultMaxSize,
		PollInterval:    poller.DefaultInterval,
		WindowWidth:     400,
		WindowHeight:    500,
		DoubleTapWindow: hotkey.DefaultWindow,
		UIPoll:          100 * time.Millisecond,
		HotkeyCodes:     codes,
		LogFormat:       "auto",
	}
}

// FromViper reads every key from v. Keys v does not know keep their
// defaults.
func FromViper(v *viper.Viper) Config {
	c := Default()
	if v.IsSet(KeyMaxSize) {
		c.MaxSize = v.GetInt(KeyMaxSize)
	}
	if v.IsSet(KeyPollInterval) {
		c.PollInterval = v.GetDuration(KeyPollInterval)
	}
	if v.IsSet(KeyWindowWidth) {
		c.WindowWidth = v.GetInt(KeyWindowWidth)
	}
	if v.IsSet(KeyWindowHeight) {
		c.WindowHeight = v.GetInt(KeyWindowHeight)
	}
	if v.IsSet(KeyDoubleTapWindow) {
		c.DoubleTapWindow = v.GetDuration(KeyDoubleTapWindow)
	}
	if v.IsSet(KeyUIPoll) {
		c.UIPoll = v.GetDuration(KeyUIPoll)
	}
	if v.IsSet(KeyHotkeyCodes) {
		c.HotkeyCodes = v.GetIntSlice(KeyHotkeyCodes)
	}
	c.HistoryFile = v.GetString(KeyHistoryFile)
	c.LogFile = v.GetString(KeyLogFile)
	c.LogLevel = v.GetString(KeyLogLevel)
	if s := v.GetString(KeyLogFormat); s != "" {
		c.LogFormat = s
	}
	return c
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.MaxSize < 1 {
		errs = errs.Append(KeyMaxSize, fmt.Errorf("must be at least 1, got %d", c.MaxSize))
	}
	if c.PollInterval <= 0 {
		errs = errs.Append(KeyPollInterval, fmt.Errorf("must be positive, got %s", c.PollInterval))
	}
	if c.WindowWidth < CellWidth {
		errs = errs.Append(KeyWindowWidth, fmt.Errorf("must be at least %d pixels, got %d", CellWidth, c.WindowWidth))
	}
	if c.WindowHeight < CellHeight {
		errs = errs.Append(KeyWindowHeight, fmt.Errorf("must be at least %d pixels, got %d", CellHeight, c.WindowHeight))
	}
	if c.DoubleTapWindow <= 0 {
		errs = errs.Append(KeyDoubleTapWindow, fmt.Errorf("must be positive, got %s", c.DoubleTapWindow))
	}
	if c.UIPoll <= 0 {
		errs = errs.Append(KeyUIPoll, fmt.Errorf("must be positive, got %s", c.UIPoll))
	}
	if len(c.HotkeyCodes) == 0 {
		errs = errs.Append(KeyHotkeyCodes, fmt.Errorf("at least one key code is required"))
	}
	for i, code := range c.HotkeyCodes {
		if code <= 0 || code > 0xFFFF {
			errs = errs.Append(fmt.Sprintf("%s[%d]", KeyHotkeyCodes, i), fmt.Errorf("key code %d out of range", code))
		}
	}
	switch c.LogFormat {
	case "", "auto", "text", "tint", "human", "json":
	default:
		errs = errs.Append(KeyLogFormat, fmt.Errorf("unknown format %q", c.LogFormat))
	}

	return errs.ToError()
}

// Codes returns the hotkey codes in the width the input hook reports. Call
// after Validate.
func (c Config) Codes() []uint16 {
	out := make([]uint16, len(c.HotkeyCodes))
	for i, code := range c.HotkeyCodes {
		out[i] = uint16(code)
	}
	return out
}

// Cells converts the window size to terminal columns and rows.
func (c Config) Cells() (cols, rows int) {
	return max(c.WindowWidth/CellWidth, 1), max(c.WindowHeight/CellHeight, 1)
}
