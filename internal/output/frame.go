package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the length of the frame header in bytes.
const HeaderSize = 4

// MaxFrameSize is the largest payload a frame may carry. It matches the
// 1 MiB limit browsers impose on messages from a native host.
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned when a payload exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// Supported byte orders for the frame header.
const (
	ByteOrderLittle = "little"
	ByteOrderBig    = "big"
	ByteOrderNative = "native"
)

// ParseByteOrder maps a configured byte order name to its encoding.
// The empty string selects little-endian.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch name {
	case ByteOrderLittle, "":
		return binary.LittleEndian, nil
	case ByteOrderBig:
		return binary.BigEndian, nil
	case ByteOrderNative:
		return binary.NativeEndian, nil
	default:
		return nil, fmt.Errorf("invalid byte order %q: must be one of little, big, native", name)
	}
}

// AppendFrame appends the framed form of payload to dst.
func AppendFrame(dst []byte, order binary.ByteOrder, payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameSize || uint64(len(payload)) > math.MaxUint32 {
		return dst, fmt.Errorf("%w: %d bytes (max %d)", ErrFrameTooLarge, len(payload), MaxFrameSize)
	}

	var header [HeaderSize]byte

	order.PutUint32(header[:], uint32(len(payload))) //nolint:gosec // bounded above

	dst = append(dst, header[:]...)
	dst = append(dst, payload...)

	return dst, nil
}

// FrameWriter writes length-prefixed frames to an underlying writer.
// Each frame is emitted with a single Write call so that a consumer never
// observes a header without its payload from this writer.
type FrameWriter struct {
	out   io.Writer
	order binary.ByteOrder
}

// NewFrameWriter creates a FrameWriter. A nil order selects little-endian.
func NewFrameWriter(w io.Writer, order binary.ByteOrder) *FrameWriter {
	if order == nil {
		order = binary.LittleEndian
	}

	return &FrameWriter{out: w, order: order}
}

// Write frames payload and writes it.
func (fw *FrameWriter) Write(payload []byte) error {
	frame, err := AppendFrame(make([]byte, 0, HeaderSize+len(payload)), fw.order, payload)
	if err != nil {
		return err
	}

	if _, err := fw.out.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	return nil
}

// FrameReader reads length-prefixed frames.
type FrameReader struct {
	in    io.Reader
	order binary.ByteOrder
}

// NewFrameReader creates a FrameReader. A nil order selects little-endian.
func NewFrameReader(r io.Reader, order binary.ByteOrder) *FrameReader {
	if order == nil {
		order = binary.LittleEndian
	}

	return &FrameReader{in: r, order: order}
}

// Next returns the payload of the next frame. It returns io.EOF when the
// stream ends cleanly between frames and io.ErrUnexpectedEOF when a frame
// is truncated.
func (fr *FrameReader) Next() ([]byte, error) {
	var header [HeaderSize]byte

	if _, err := io.ReadFull(fr.in, header[:]); err != nil {
		return nil, err
	}

	n := fr.order.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: header announces %d bytes", ErrFrameTooLarge, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(fr.in, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return payload, nil
}
