package segy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	h := DefaultHeader()

	for scenario, fn := range map[string]func(t *testing.T, dir string, h Header){
		"reports payload after placeholder header": testInspectPlaceholder,
		"detects a non fill header":                testInspectRealHeader,
		"marks files shorter than the header":      testInspectTruncated,
		"fails on missing file":                    testInspectMissing,
	} {
		t.Run(scenario, func(t *testing.T) {
			fn(t, dir, h)
		})
	}
}

func testInspectPlaceholder(t *testing.T, dir string, h Header) {
	path := filepath.Join(dir, "line1.segy")
	writeFile(t, path, append(h.Bytes(), 1, 2, 3, 4, 5))

	info, err := Inspect(path, h)
	require.NoError(t, err)
	require.Equal(t, "line1.segy", info.Name)
	require.Equal(t, int64(TextualHeaderSize+5), info.Size)
	require.Equal(t, int64(5), info.PayloadSize)
	require.True(t, info.PlaceholderHeader)
	require.False(t, info.Truncated)
}

func testInspectRealHeader(t *testing.T, dir string, h Header) {
	content := h.Bytes()
	copy(content, "C 1 CLIENT")

	path := filepath.Join(dir, "line2.segy")
	writeFile(t, path, content)

	info, err := Inspect(path, h)
	require.NoError(t, err)
	require.Equal(t, int64(0), info.PayloadSize)
	require.False(t, info.PlaceholderHeader)
}

func testInspectTruncated(t *testing.T, dir string, h Header) {
	path := filepath.Join(dir, "short.sgy")
	writeFile(t, path, make([]byte, 10))

	info, err := Inspect(path, h)
	require.NoError(t, err)
	require.True(t, info.Truncated)
	require.Equal(t, int64(0), info.PayloadSize)
}

func testInspectMissing(t *testing.T, dir string, h Header) {
	info, err := Inspect(filepath.Join(dir, "missing.segy"), h)
	require.Nil(t, info)
	require.True(t, os.IsNotExist(err))
}

func TestListSortsSegyFiles(t *testing.T) {
	dir := t.TempDir()
	h := DefaultHeader()

	writeFile(t, filepath.Join(dir, "b.SGY"), h.Bytes())
	writeFile(t, filepath.Join(dir, "a.SEGY"), h.Bytes())
	writeFile(t, filepath.Join(dir, "c.segy"), h.Bytes())
	writeFile(t, filepath.Join(dir, "input.dat"), []byte{1, 2, 3})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.segy"), 0o755))

	files, err := List(dir, h)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"a.SEGY", "b.SGY", "c.segy"}, names)
}

func TestListFailsOnMissingDirectory(t *testing.T) {
	files, err := List(filepath.Join(t.TempDir(), "nope"), DefaultHeader())
	require.Nil(t, files)
	require.Error(t, err)
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestInspectLargeHeader(t *testing.T) {
	dir := t.TempDir()
	h := Header{Size: 2*maxFillChunk + 5, Fill: 0x40}

	for scenario, tc := range map[string]struct {
		mutate      int
		placeholder bool
	}{
		"fill across every chunk":    {-1, true},
		"mismatch in the last chunk": {h.Size - 1, false},
		"mismatch in a middle chunk": {maxFillChunk + 3, false},
	} {
		t.Run(scenario, func(t *testing.T) {
			content := append(h.Bytes(), 1, 2)
			if tc.mutate >= 0 {
				content[tc.mutate] = 0x00
			}
			path := filepath.Join(dir, "large.segy")
			writeFile(t, path, content)

			info, err := Inspect(path, h)
			require.NoError(t, err)
			require.Equal(t, tc.placeholder, info.PlaceholderHeader)
			require.Equal(t, int64(2), info.PayloadSize)
		})
	}
}
