package storage

import (
	"context"
	"errors"
	"io"

	"github.com/weak-head/segy-pipe/internal/logger"
)

var (
	// ErrUnknownKind happens when the storage kind is neither minio nor local.
	ErrUnknownKind = errors.New("unknown storage kind")

	// ErrNoEndpoint happens when the minio endpoint is not configured.
	ErrNoEndpoint = errors.New("no storage endpoint")

	// ErrNoRoot happens when the local storage root is not configured.
	ErrNoRoot = errors.New("no storage root")

	// ErrInvalidName happens when a bucket or an object has an empty name.
	ErrInvalidName = errors.New("invalid bucket or object name")

	// ErrBucketNotFound happens when storing into a missing bucket
	// that is not created on demand.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrSizeMismatch happens when the stored object is not of the announced size.
	ErrSizeMismatch = errors.New("object size mismatch")
)

// Storage streams objects in and out of buckets.
type Storage interface {
	// Open returns the object content and its size.
	Open(ctx context.Context, bucket string, objectName string) (io.ReadCloser, int64, error)

	// Store uploads exactly size bytes read from r.
	Store(ctx context.Context, bucket string, objectName string, r io.Reader, size int64, contentType string) error
}

// New creates the storage of the configured kind.
func New(conf Config, log logger.Log) (Storage, error) {
	switch conf.Kind {
	case "", KindMinio:
		return NewMinioStorage(conf, log)
	case KindLocal:
		return NewLocalStorage(conf, log)
	default:
		return nil, ErrUnknownKind
	}
}
