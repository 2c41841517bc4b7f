package processor

import (
	"bytes"
	"context"
	"io"

	"github.com/weak-head/segy-pipe/internal/segy"
)

// segyConverter prepends the header block to the data frame.
type segyConverter struct {
	block []byte
}

// NewSegyConverter renders the header once; every conversion reuses it.
func NewSegyConverter(header segy.Header) (*segyConverter, error) {
	if err := header.Validate(); err != nil {
		return nil, err
	}
	return &segyConverter{block: header.Bytes()}, nil
}

// Convert returns a stream of the header followed by a verbatim copy of the frame.
func (c *segyConverter) Convert(ctx context.Context, from io.Reader, size int64) (io.Reader, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	return io.MultiReader(bytes.NewReader(c.block), from), int64(len(c.block)) + size, nil
}
