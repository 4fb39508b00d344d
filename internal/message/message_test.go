package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	m, err := Decode([]byte(`{"type":"LIST","query":"foo","limit":5}`))
	require.NoError(t, err)
	assert.Equal(t, TypeList, m.Type)
	assert.Equal(t, "foo", m.Query)
	assert.Equal(t, 5, m.Limit)
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{``, `not json`, `{}`, `{"type":""}`} {
		_, err := Decode([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestEncode_OmitsEmptyFields(t *testing.T) {
	b, err := (&Message{Type: TypeToggle}).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TOGGLE"}`, string(b))
}

func TestErr(t *testing.T) {
	assert.NoError(t, (&Message{Type: TypeOK}).Err())

	err := Errorf("bad %s", "thing").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad thing")
}
