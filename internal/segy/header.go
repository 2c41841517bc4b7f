package segy

import (
	"bytes"
	"errors"
	"io"
)

const (
	// TextualHeaderSize is the size of the SEG-Y textual file header.
	TextualHeaderSize = 3200

	// maxFillChunk bounds the buffer used to write large headers.
	maxFillChunk = 32 * 1024
)

var (
	// ErrInvalidHeaderSize happens when the header size is negative.
	ErrInvalidHeaderSize = errors.New("invalid header size")
)

// Header is the block written in front of the payload.
// Every byte of the block has the Fill value.
type Header struct {
	Size int
	Fill byte
}

// DefaultHeader returns the all-zero textual header.
func DefaultHeader() Header {
	return Header{Size: TextualHeaderSize, Fill: 0x00}
}

// Validate returns an error if the header can not be rendered.
func (h Header) Validate() error {
	if h.Size < 0 {
		return ErrInvalidHeaderSize
	}
	return nil
}

// Bytes renders the header block.
func (h Header) Bytes() []byte {
	if h.Size <= 0 {
		return []byte{}
	}
	return bytes.Repeat([]byte{h.Fill}, h.Size)
}

// WriteTo writes exactly Size fill bytes to w.
func (h Header) WriteTo(w io.Writer) (int64, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}

	chunk := h.Size
	if chunk > maxFillChunk {
		chunk = maxFillChunk
	}
	buf := bytes.Repeat([]byte{h.Fill}, chunk)

	var written int64
	for remaining := h.Size; remaining > 0; {
		n := chunk
		if remaining < n {
			n = remaining
		}
		m, err := w.Write(buf[:n])
		written += int64(m)
		if err != nil {
			return written, err
		}
		if m != n {
			return written, io.ErrShortWrite
		}
		remaining -= n
	}

	return written, nil
}

// IsFill reports whether every byte of b equals the fill byte.
func (h Header) IsFill(b []byte) bool {
	for _, v := range b {
		if v != h.Fill {
			return false
		}
	}
	return true
}
