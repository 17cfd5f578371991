package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFrameSize bounds how much a FrameReader buffers while waiting for the
// end of a frame.
const MaxFrameSize = 64 << 10

var (
	// ErrFrameTooLarge is reported when a frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")

	// ErrDelimiterInPayload is returned by LineFraming for payloads that
	// contain a newline.
	ErrDelimiterInPayload = errors.New("payload contains frame delimiter")
)

// Framing delimits logical messages on a byte stream.
type Framing interface {
	// Name returns the configuration name of the framing.
	Name() string

	// Frame wraps one payload for writing.
	Frame(payload []byte) ([]byte, error)

	// Split extracts the first complete frame from buf.
	// ok is false when buf does not yet hold a complete frame.
	Split(buf []byte) (frame, rest []byte, ok bool, err error)
}

// FramingByName resolves "line", "varint" or "raw".
func FramingByName(name string) (Framing, error) {
	switch name {
	case "", "line":
		return LineFraming{}, nil
	case "varint":
		return VarintFraming{}, nil
	case "raw":
		return RawFraming{}, nil
	default:
		return nil, fmt.Errorf("unknown framing %q", name)
	}
}

// LineFraming terminates every payload with '\n'.
type LineFraming struct{}

func (LineFraming) Name() string { return "line" }

func (LineFraming) Frame(payload []byte) ([]byte, error) {
	if bytes.IndexByte(payload, '\n') >= 0 {
		return nil, ErrDelimiterInPayload
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, payload...)
	return append(out, '\n'), nil
}

func (LineFraming) Split(buf []byte) ([]byte, []byte, bool, error) {
	i := bytes.IndexByte(buf, '\n')
	if i < 0 {
		return nil, buf, false, nil
	}
	return bytes.TrimSuffix(buf[:i], []byte{'\r'}), buf[i+1:], true, nil
}

// VarintFraming prefixes every payload with its length as a protobuf varint.
type VarintFraming struct{}

func (VarintFraming) Name() string { return "varint" }

func (VarintFraming) Frame(payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	return protowire.AppendBytes(nil, payload), nil
}

func (VarintFraming) Split(buf []byte) ([]byte, []byte, bool, error) {
	size, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		err := protowire.ParseError(n)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, buf, false, nil
		}
		return nil, nil, false, fmt.Errorf("invalid frame header: %w", err)
	}
	if size > MaxFrameSize {
		return nil, nil, false, ErrFrameTooLarge
	}
	end := n + int(size)
	if len(buf) < end {
		return nil, buf, false, nil
	}
	return buf[n:end], buf[end:], true, nil
}

// RawFraming treats each read as exactly one message. Messages that share a
// read or straddle two reads are not separated.
type RawFraming struct{}

func (RawFraming) Name() string { return "raw" }

func (RawFraming) Frame(payload []byte) ([]byte, error) { return payload, nil }

func (RawFraming) Split(buf []byte) ([]byte, []byte, bool, error) {
	if len(buf) == 0 {
		return nil, buf, false, nil
	}
	return buf, nil, true, nil
}

// FrameReader accumulates partial reads and yields complete frames only.
type FrameReader struct {
	framing Framing
	buf     []byte
}

// NewFrameReader creates a FrameReader for the given framing.
func NewFrameReader(f Framing) *FrameReader {
	return &FrameReader{framing: f}
}

// Feed appends chunk to the internal buffer and returns every frame that is
// now complete. The returned frames are copies and remain valid after the
// next call. On a framing error the buffer is discarded and the frames
// found before the error are still returned.
func (r *FrameReader) Feed(chunk []byte) ([][]byte, error) {
	r.buf = append(r.buf, chunk...)

	var frames [][]byte
	for {
		frame, rest, ok, err := r.framing.Split(r.buf)
		if err != nil {
			r.buf = nil
			return frames, err
		}
		if !ok {
			break
		}
		frames = append(frames, bytes.Clone(frame))
		r.buf = rest
	}

	if len(r.buf) > MaxFrameSize {
		r.buf = nil
		return frames, ErrFrameTooLarge
	}
	if len(r.buf) == 0 {
		r.buf = nil
	}
	return frames, nil
}

// Buffered returns the number of bytes held for an incomplete frame.
func (r *FrameReader) Buffered() int {
	return len(r.buf)
}
