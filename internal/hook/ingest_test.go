package hook

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEvent_DecodesValidPayload(t *testing.T) {
	var v struct {
		Tool string `json:"tool"`
	}
	require.NoError(t, ReadEvent(strings.NewReader(`{"tool":"memory"}`), &v))
	assert.Equal(t, "memory", v.Tool)
}

func TestReadEvent_RejectsOversizedPayload(t *testing.T) {
	huge := bytes.Repeat([]byte("a"), MaxStdinBytes+1)
	var v any
	err := ReadEvent(bytes.NewReader(huge), &v)
	assert.ErrorIs(t, err, ErrStdinTooLarge)
}

func TestReadEvent_MalformedJSONErrors(t *testing.T) {
	var v any
	err := ReadEvent(strings.NewReader("{not json"), &v)
	assert.Error(t, err)
}
