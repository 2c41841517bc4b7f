package segy

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo describes a file produced by prepending a header to a payload.
type FileInfo struct {
	Name string
	Path string
	Size int64

	// PayloadSize is the number of bytes after the header block.
	PayloadSize int64

	// Truncated is set when the file is shorter than the header block.
	Truncated bool

	// PlaceholderHeader is set when the header region holds only fill bytes.
	PlaceholderHeader bool
}

// Inspect reads the header region of the file at path.
func Inspect(path string, h Header) (*FileInfo, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		Name: filepath.Base(path),
		Path: path,
		Size: st.Size(),
	}

	if info.Size < int64(h.Size) {
		info.Truncated = true
		return info, nil
	}
	info.PayloadSize = info.Size - int64(h.Size)

	placeholder, err := h.isFillRegion(f)
	if err != nil {
		return nil, err
	}
	info.PlaceholderHeader = placeholder

	return info, nil
}

// isFillRegion reads the first Size bytes of r in bounded chunks
// and reports whether all of them are fill bytes.
func (h Header) isFillRegion(r io.Reader) (bool, error) {
	chunk := h.Size
	if chunk > maxFillChunk {
		chunk = maxFillChunk
	}
	buf := make([]byte, chunk)

	for remaining := h.Size; remaining > 0; {
		n := chunk
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return false, err
		}
		if !h.IsFill(buf[:n]) {
			return false, nil
		}
		remaining -= n
	}

	return true, nil
}

// List inspects every .segy and .sgy file of dir, sorted by name.
func List(dir string, h Header) ([]*FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []*FileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isSegyName(entry.Name()) {
			continue
		}

		info, err := Inspect(filepath.Join(dir, entry.Name()), h)
		if err != nil {
			return nil, err
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func isSegyName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".segy", ".sgy":
		return true
	default:
		return false
	}
}
