package clip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadless(t *testing.T) {
	b := Headless()
	defer b.Close()

	_, err := b.ReadText()
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.ErrorIs(t, b.WriteText("x"), ErrUnavailable)
	assert.NotEmpty(t, b.Name())
}
