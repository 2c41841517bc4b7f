package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/weak-head/segy-pipe/internal/logger"
)

// localStorage keeps every bucket as a directory under the root.
type localStorage struct {
	root   string
	create bool

	log logger.Log
}

// NewLocalStorage creates a filesystem storage rooted at conf.Local.Root.
func NewLocalStorage(conf Config, log logger.Log) (*localStorage, error) {
	if conf.Local.Root == "" {
		return nil, ErrNoRoot
	}

	st, err := os.Stat(conf.Local.Root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("storage root %s: not a directory", conf.Local.Root)
	}

	return &localStorage{
		root:   conf.Local.Root,
		create: conf.CreateBucketIfNotExist,
		log:    log.WithField(logger.FieldPackage, "storage"),
	}, nil
}

// Open opens the object file.
func (l *localStorage) Open(ctx context.Context, bucket string, objectName string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	path, err := l.objectPath(bucket, objectName)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open object %s/%s: %w", bucket, objectName, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, st.Size(), nil
}

// Store writes the object to a temporary file and renames it into place,
// so a failed store never leaves a partial object.
func (l *localStorage) Store(
	ctx context.Context,
	bucket string,
	objectName string,
	r io.Reader,
	size int64,
	contentType string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := l.objectPath(bucket, objectName)
	if err != nil {
		return err
	}

	bucketDir := filepath.Join(l.root, cleanName(bucket))
	if _, err := os.Stat(bucketDir); errors.Is(err, os.ErrNotExist) {
		if !l.create {
			return ErrBucketNotFound
		}
		l.log.WithField("bucket", bucket).Info("A new bucket has been created.")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".object-*")
	if err != nil {
		return err
	}

	n, err := io.Copy(f, r)
	if err == nil && n != size {
		err = ErrSizeMismatch
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		os.Remove(f.Name())
		return err
	}

	l.log.WithFields(logger.Fields{
		logger.FieldFunction: "localStorage.Store",
		"bucket": bucket,
		"object": objectName,
		"size":   n,
	}).Debug("Stored the object.")
	return nil
}

// objectPath maps the object to a file that never escapes the root.
func (l *localStorage) objectPath(bucket string, objectName string) (string, error) {
	b, o := cleanName(bucket), cleanName(objectName)
	if b == "" || o == "" {
		return "", ErrInvalidName
	}
	return filepath.Join(l.root, b, o), nil
}

func cleanName(name string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(name))
	if clean == string(filepath.Separator) {
		return ""
	}
	return clean[1:]
}
