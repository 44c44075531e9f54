package novakvwire

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, ExecuteRequest{ID: 7, SQL: "SELECT * FROM t;"}))
	require.NoError(t, WriteFrame(&buf, ExecuteRequest{ID: 8, SQL: "SELECT 'ü' FROM t;"}))

	var a, b ExecuteRequest
	require.NoError(t, ReadFrame(&buf, &a))
	require.NoError(t, ReadFrame(&buf, &b))
	assert.Equal(t, ExecuteRequest{ID: 7, SQL: "SELECT * FROM t;"}, a)
	assert.Equal(t, uint64(8), b.ID)

	var c ExecuteRequest
	assert.ErrorIs(t, ReadFrame(&buf, &c), io.EOF)
}

func TestFrame_HeaderIsBigEndianLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, ExecuteRequest{ID: 1}))

	raw := buf.Bytes()
	n := binary.BigEndian.Uint32(raw[:headerSize])
	assert.Equal(t, len(raw)-headerSize, int(n))
	assert.JSONEq(t, `{"id":1,"sql":""}`, string(raw[headerSize:]))
}

func TestReadFrameLimit_Rejections(t *testing.T) {
	var req ExecuteRequest

	empty := []byte{0, 0, 0, 0}
	err := ReadFrameLimit(bytes.NewReader(empty), &req, 16)
	require.ErrorIs(t, err, ErrEmptyFrame)
	assert.True(t, Resyncable(err))

	var big bytes.Buffer
	require.NoError(t, WriteFrame(&big, ExecuteRequest{SQL: strings.Repeat("x", 64)}))
	err = ReadFrameLimit(&big, &req, 16)
	require.ErrorIs(t, err, ErrFrameTooLarge)
	assert.False(t, Resyncable(err))

	bad := append([]byte{0, 0, 0, 3}, "{x}"...)
	err = ReadFrameLimit(bytes.NewReader(bad), &req, 16)
	require.ErrorIs(t, err, ErrBadPayload)
	assert.True(t, Resyncable(err))

	short := append([]byte{0, 0, 0, 9}, "{}"...)
	err = ReadFrameLimit(bytes.NewReader(short), &req, 16)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteFrameLimit_TooLargeWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrameLimit(&buf, ExecuteRequest{SQL: strings.Repeat("x", 64)}, 16)
	require.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Zero(t, buf.Len())
}
