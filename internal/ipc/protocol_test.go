package ipc

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := Request{ID: "1", Action: "memory.store", SessionID: "sess-1", Params: []byte(`{"key":"v"}`)}

	require.NoError(t, WriteFrame(&buf, req))

	var got Request
	require.NoError(t, ReadFrame(bufio.NewReader(&buf), &got))
	assert.Equal(t, req, got)
}

func TestWriteFrame_RejectsOversizedMessage(t *testing.T) {
	var buf bytes.Buffer
	// Params must be valid JSON for Marshal to reach the size check: a
	// quoted string of MaxMessageBytes letters.
	huge := Request{ID: "1", Action: "x", Params: append(append([]byte(`"`), bytes.Repeat([]byte("a"), MaxMessageBytes)...), '"')}

	err := WriteFrame(&buf, huge)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestReadFrame_RejectsForgedOversizedLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], MaxMessageBytes+1)
	buf.Write(lenBuf[:])

	var got Request
	err := ReadFrame(bufio.NewReader(&buf), &got)
	assert.ErrorIs(t, err, ErrMessageTooLarge, "an oversized length prefix must be rejected before any payload read")
}

func TestReadFrame_TruncatedStreamErrors(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 10)
	buf.Write(lenBuf[:])
	buf.WriteString("short")

	var got Request
	err := ReadFrame(bufio.NewReader(&buf), &got)
	assert.Error(t, err)
}

func TestResponse_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	resp := Response{ID: "1", OK: false, Error: "not found", Hint: "try a different key"}

	require.NoError(t, WriteFrame(&buf, resp))

	var got Response
	require.NoError(t, ReadFrame(bufio.NewReader(&buf), &got))
	assert.Equal(t, resp, got)
}
