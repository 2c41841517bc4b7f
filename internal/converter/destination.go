package converter

import (
	"errors"
	"os"
	"path/filepath"
)

// destination is the output file of a conversion.
//
// Regular files are written to a temporary file next to the destination
// and renamed over it on commit. Devices and pipes are written in place.
type destination struct {
	*os.File

	// path is the file replaced on commit, symlinks resolved.
	path string
	temp bool
}

// openDestination makes sure path can be written and opens the file
// the conversion writes to.
func openDestination(path string) (*destination, error) {
	target := path
	mode := os.FileMode(0o644)

	st, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Created on commit.

	case err != nil:
		return nil, &Error{Kind: ErrDestinationOpen, Path: path, Err: err}

	case st.IsDir():
		return nil, &Error{Kind: ErrDestinationOpen, Path: path, Err: ErrIsDirectory}

	case !st.Mode().IsRegular():
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
		if err != nil {
			return nil, &Error{Kind: ErrDestinationOpen, Path: path, Err: err}
		}
		return &destination{File: f, path: path}, nil

	default:
		// The existing file must be writable by the caller
		// even though it is replaced rather than rewritten.
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return nil, &Error{Kind: ErrDestinationOpen, Path: path, Err: err}
		}
		f.Close()

		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			target = resolved
		}
		mode = st.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, &Error{Kind: ErrDestinationOpen, Path: path, Err: err}
	}

	if err := f.Chmod(mode); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, &Error{Kind: ErrDestinationOpen, Path: path, Err: err}
	}

	return &destination{File: f, path: target, temp: true}, nil
}

// commit flushes the written file to stable storage and,
// for a temporary file, moves it over the destination.
func (d *destination) commit() error {
	if !d.temp {
		return d.Close()
	}

	if err := d.Sync(); err != nil {
		d.abort()
		return err
	}

	if err := d.Close(); err != nil {
		os.Remove(d.Name())
		return err
	}

	if err := os.Rename(d.Name(), d.path); err != nil {
		os.Remove(d.Name())
		return err
	}

	return nil
}

// abort discards everything written so far.
func (d *destination) abort() {
	d.Close()
	if d.temp {
		os.Remove(d.Name())
	}
}
