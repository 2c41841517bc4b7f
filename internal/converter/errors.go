package converter

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSourceOpen happens when the source file can not be opened for reading.
	ErrSourceOpen = errors.New("source unreadable")

	// ErrSourceRead happens when reading the opened source file fails.
	ErrSourceRead = errors.New("source read failed")

	// ErrDestinationOpen happens when the destination file can not be opened for writing.
	ErrDestinationOpen = errors.New("destination unwritable")

	// ErrDestinationWrite happens when writing, syncing or closing the destination fails.
	ErrDestinationWrite = errors.New("destination write failed")

	// ErrIsDirectory happens when the source path names a directory.
	ErrIsDirectory = errors.New("is a directory")
)

const (
	FailureSourceOpen       = "source_open"
	FailureSourceRead       = "source_read"
	FailureDestinationOpen  = "destination_open"
	FailureDestinationWrite = "destination_write"
	FailureCanceled         = "canceled"
	FailureUnknown          = "unknown"
)

// Error is a conversion failure of a given kind.
// The kind is one of the Err* sentinels and matches with errors.Is.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Failure returns the metrics label of the conversion error.
func Failure(err error) string {
	switch {
	case errors.Is(err, ErrSourceOpen):
		return FailureSourceOpen
	case errors.Is(err, ErrSourceRead):
		return FailureSourceRead
	case errors.Is(err, ErrDestinationOpen):
		return FailureDestinationOpen
	case errors.Is(err, ErrDestinationWrite):
		return FailureDestinationWrite
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	default:
		return FailureUnknown
	}
}
