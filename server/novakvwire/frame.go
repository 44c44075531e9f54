package novakvwire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxFrameSize limits memory usage on malformed/hostile input.
	MaxFrameSize = 8 << 20 // 8 MiB

	headerSize = 4
)

var (
	ErrEmptyFrame    = errors.New("novakvwire: empty frame")
	ErrFrameTooLarge = errors.New("novakvwire: frame too large")
	ErrBadPayload    = errors.New("novakvwire: bad json")
)

// ReadFrame reads a single length-prefixed JSON frame of at most
// MaxFrameSize bytes.
func ReadFrame(r io.Reader, v any) error {
	return ReadFrameLimit(r, v, MaxFrameSize)
}

// ReadFrameLimit reads a single length-prefixed JSON frame. A frame longer
// than limit is rejected before its payload is read, so the stream is no
// longer aligned on a frame boundary after ErrFrameTooLarge.
func ReadFrameLimit(r io.Reader, v any, limit int) error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 {
		return ErrEmptyFrame
	}
	if uint64(n) > uint64(limit) {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, limit)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}

	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// WriteFrame writes v as a length-prefixed JSON frame.
func WriteFrame(w io.Writer, v any) error {
	return WriteFrameLimit(w, v, MaxFrameSize)
}

// WriteFrameLimit writes v as one frame. Nothing is written when the
// encoded payload exceeds limit.
func WriteFrameLimit(w io.Writer, v any, limit int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("novakvwire: marshal: %w", err)
	}
	if len(b) == 0 {
		return ErrEmptyFrame
	}
	if len(b) > limit {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(b), limit)
	}

	// header and payload go out in one write so concurrent writers
	// serialized by a mutex never interleave partial frames
	out := make([]byte, headerSize+len(b))
	binary.BigEndian.PutUint32(out[:headerSize], uint32(len(b)))
	copy(out[headerSize:], b)

	_, err = w.Write(out)
	return err
}

// Resyncable reports whether the stream is still aligned on a frame
// boundary after ReadFrameLimit returned err.
func Resyncable(err error) bool {
	return errors.Is(err, ErrEmptyFrame) || errors.Is(err, ErrBadPayload)
}
