package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipdeck/internal/hotkey"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 100, c.MaxSize)
	assert.Equal(t, 500*time.Millisecond, c.PollInterval)
	assert.Equal(t, 300*time.Millisecond, c.DoubleTapWindow)
	assert.Equal(t, 100*time.Millisecond, c.UIPoll)
	assert.Equal(t, hotkey.DefaultCodes, c.Codes())
}

func TestValidate_CollectsAllFieldErrors(t *testing.T) {
	c := Default()
	c.MaxSize = 0
	c.PollInterval = 0
	c.WindowWidth = 2
	c.HotkeyCodes = []int{29, 70000}
	c.LogFormat = "xml"

	err := c.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{
		KeyMaxSize, KeyPollInterval, KeyWindowWidth, "hotkey-codes[1]", KeyLogFormat,
	}, fields)
}

func TestValidate_EmptyHotkeyCodes(t *testing.T) {
	c := Default()
	c.HotkeyCodes = nil

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, c.Validate(), &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, KeyHotkeyCodes, fieldErrs[0].Field)
}

func TestFromViper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipdeck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
max-size = 25
poll-interval = "1s"
window-width = 640
hotkey-codes = [88]
history-file = "/tmp/h.json"
`), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c := FromViper(v)
	require.NoError(t, c.Validate())
	assert.Equal(t, 25, c.MaxSize)
	assert.Equal(t, time.Second, c.PollInterval)
	assert.Equal(t, 640, c.WindowWidth)
	assert.Equal(t, 500, c.WindowHeight, "unset keys keep defaults")
	assert.Equal(t, []uint16{88}, c.Codes())
	assert.Equal(t, "/tmp/h.json", c.HistoryFile)
	assert.Equal(t, "auto", c.LogFormat)
}

func TestCells(t *testing.T) {
	cols, rows := Default().Cells()
	assert.Equal(t, 50, cols)
	assert.Equal(t, 31, rows)

	c := Default()
	c.WindowWidth, c.WindowHeight = 1, 1
	cols, rows = c.Cells()
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)
}
