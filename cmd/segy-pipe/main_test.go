package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weak-head/segy-pipe/internal/converter"
	"github.com/weak-head/segy-pipe/internal/segy"
	"github.com/weak-head/segy-pipe/internal/storage"
	"github.com/weak-head/segy-pipe/internal/stream"
)

func TestExecuteConvert(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, dir string){
		"converts and prints the success message":     testConvertSuccess,
		"exits with source status if no source":       testConvertMissingSource,
		"exits with destination status if no dir":     testConvertMissingDestinationDir,
		"honors the header flags":                     testConvertHeaderFlags,
		"writes the metrics textfile":                 testConvertMetricsTextfile,
		"exits with failure on invalid header":        testConvertInvalidHeader,
		"exits with failure on unexpected args":       testConvertUnexpectedArgs,
		"exits with write status on a full device":    testConvertFullDevice,
		"exits with read status on unreadable source": testConvertUnreadableSource,
	} {
		t.Run(scenario, func(t *testing.T) {
			fn(t, t.TempDir())
		})
	}
}

func TestExecuteDefaultPaths(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	require.NoError(t, os.WriteFile(converter.DefaultSourcePath, []byte{0x07}, 0o644))

	stdout := new(bytes.Buffer)
	code := execute(nil, stdout, new(bytes.Buffer))
	require.Equal(t, exitOK, code)
	require.Equal(t, successMessage+"\n", stdout.String())

	out, err := os.ReadFile(filepath.Join(dir, converter.DefaultDestinationPath))
	require.NoError(t, err)
	require.Equal(t, segy.TextualHeaderSize+1, len(out))
	require.Equal(t, byte(0x07), out[segy.TextualHeaderSize])
}

func TestExitCode(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code int
	}{
		{nil, exitOK},
		{&converter.Error{Kind: converter.ErrSourceOpen, Err: os.ErrNotExist}, exitSourceOpen},
		{&converter.Error{Kind: converter.ErrDestinationOpen, Err: os.ErrPermission}, exitDestinationOpen},
		{&converter.Error{Kind: converter.ErrSourceRead, Err: errors.New("input/output error")}, exitSourceRead},
		{&converter.Error{Kind: converter.ErrDestinationWrite, Err: errors.New("no space left on device")}, exitDestinationWrite},
		{errors.New("unknown flag"), exitFailure},
	} {
		require.Equal(t, tc.code, exitCode(tc.err))
	}
}

func TestExecuteInspect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "line1.segy"), append(make([]byte, segy.TextualHeaderSize), 1, 2, 3), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "short.SGY"), []byte{1}, 0o644))

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := execute([]string{"inspect", dir}, stdout, stderr)
	require.Equal(t, exitOK, code)

	out := stdout.String()
	require.Contains(t, out, "Directory: "+dir)
	require.Contains(t, out, "├── line1.segy (3.2 kB)")
	require.Contains(t, out, "│   ├── Payload: 3 B")
	require.Contains(t, out, "│   └── Header: placeholder")
	require.Contains(t, out, "├── short.SGY (1 B)")
	require.Contains(t, out, "│   └── Header: truncated")
}

func TestExecuteInspectEmptyDirectory(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := execute([]string{"inspect", t.TempDir()}, stdout, stderr)
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout.String(), "No SEG-Y files found.")
}

func testConvertSuccess(t *testing.T, dir string) {
	input := filepath.Join(dir, converter.DefaultSourcePath)
	output := filepath.Join(dir, converter.DefaultDestinationPath)
	require.NoError(t, os.WriteFile(input, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, 0o644))

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := execute([]string{"-i", input, "-o", output}, stdout, stderr)
	require.Equal(t, exitOK, code)
	require.Equal(t, successMessage+"\n", stdout.String())

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, append(make([]byte, segy.TextualHeaderSize), 0x01, 0x02, 0x03, 0x04, 0x05), out)
}

func testConvertMissingSource(t *testing.T, dir string) {
	output := filepath.Join(dir, converter.DefaultDestinationPath)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := execute([]string{"-i", filepath.Join(dir, "missing.dat"), "-o", output}, stdout, stderr)
	require.Equal(t, exitSourceOpen, code)
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "source unreadable")

	_, err := os.Stat(output)
	require.True(t, os.IsNotExist(err))
}

func testConvertMissingDestinationDir(t *testing.T, dir string) {
	input := filepath.Join(dir, converter.DefaultSourcePath)
	require.NoError(t, os.WriteFile(input, []byte{0x01}, 0o644))

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := execute([]string{"-i", input, "-o", filepath.Join(dir, "nope", "out.segy")}, stdout, stderr)
	require.Equal(t, exitDestinationOpen, code)
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "destination unwritable")
}

func testConvertHeaderFlags(t *testing.T, dir string) {
	input := filepath.Join(dir, converter.DefaultSourcePath)
	output := filepath.Join(dir, converter.DefaultDestinationPath)
	require.NoError(t, os.WriteFile(input, []byte("raw"), 0o644))

	code := execute([]string{
		"-i", input,
		"-o", output,
		"--header-size", "4",
		"--header-fill", "64",
		"--buffered",
	}, new(bytes.Buffer), new(bytes.Buffer))
	require.Equal(t, exitOK, code)

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, []byte("@@@@raw"), out)
}

func testConvertMetricsTextfile(t *testing.T, dir string) {
	input := filepath.Join(dir, converter.DefaultSourcePath)
	require.NoError(t, os.WriteFile(input, []byte{0x01}, 0o644))
	textfile := filepath.Join(dir, "segy.prom")

	code := execute([]string{
		"-i", input,
		"-o", filepath.Join(dir, converter.DefaultDestinationPath),
		"--metrics-textfile", textfile,
	}, new(bytes.Buffer), new(bytes.Buffer))
	require.Equal(t, exitOK, code)

	content, err := os.ReadFile(textfile)
	require.NoError(t, err)
	require.Contains(t, string(content), "conversions_total")
}

func testConvertInvalidHeader(t *testing.T, dir string) {
	stderr := new(bytes.Buffer)
	code := execute([]string{"--header-size=-1"}, new(bytes.Buffer), stderr)
	require.Equal(t, exitFailure, code)
	require.Contains(t, stderr.String(), segy.ErrInvalidHeaderSize.Error())
}

func testConvertUnexpectedArgs(t *testing.T, dir string) {
	code := execute([]string{"input.dat"}, new(bytes.Buffer), new(bytes.Buffer))
	require.Equal(t, exitFailure, code)
}

func testConvertFullDevice(t *testing.T, dir string) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this system")
	}

	input := filepath.Join(dir, converter.DefaultSourcePath)
	require.NoError(t, os.WriteFile(input, []byte{0x01}, 0o644))

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := execute([]string{"-i", input, "--output", "/dev/full"}, stdout, stderr)
	require.Equal(t, exitDestinationWrite, code)
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "destination write failed")
}

func testConvertUnreadableSource(t *testing.T, dir string) {
	const input = "/proc/self/mem"
	f, err := os.Open(input)
	if err != nil {
		t.Skip("no readable procfs on this system")
	}
	f.Close()

	output := filepath.Join(dir, converter.DefaultDestinationPath)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := execute([]string{"-i", input, "-o", output}, stdout, stderr)
	require.Equal(t, exitSourceRead, code)
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "source read failed")

	_, err = os.Stat(output)
	require.True(t, os.IsNotExist(err))
}

func TestExecutePipeConfig(t *testing.T) {
	for _, tc := range []struct {
		args    []string
		message string
	}{
		{[]string{"pipe", "--storage", "ftp"}, "unknown storage kind: ftp"},
		{[]string{"pipe", "--destination-bucket", ""}, "no destination bucket"},
		{[]string{"pipe", "--brokers", ""}, "no brokers provided"},
	} {
		stderr := new(bytes.Buffer)
		code := execute(tc.args, new(bytes.Buffer), stderr)
		require.Equal(t, exitFailure, code)
		require.Contains(t, stderr.String(), tc.message)
	}
}

func TestInitPipeConfig(t *testing.T) {
	t.Setenv(envMinioAccessKey, "access")
	t.Setenv(envMinioSecretKey, "secret")

	c := &cli{}
	cmd := c.pipeCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--brokers", "kafka-1:9092,kafka-2:9092",
		"--create-topics",
		"--partitions", "4",
		"--storage", "local",
		"--storage-root", "/srv/frames",
		"--minio-secret-key", "flag-secret",
	}))
	require.NoError(t, c.initPipeConfig(cmd, nil))

	pc := c.cfg.pipe
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, pc.reader.Brokers)
	require.Equal(t, pc.reader.Brokers, pc.writer.Brokers)

	require.Equal(t, "raw-frames", pc.reader.Topic.Name)
	require.Equal(t, "segy-frames", pc.writer.Topic.Name)
	for _, topic := range []stream.TopicConfig{pc.reader.Topic, pc.writer.Topic} {
		require.True(t, topic.Create)
		require.Equal(t, 4, topic.Partitions)
		require.Equal(t, 1, topic.ReplicationFactor)
	}

	require.Equal(t, storage.KindLocal, pc.storage.Kind)
	require.Equal(t, "/srv/frames", pc.storage.Local.Root)
	require.Equal(t, "access", pc.storage.Minio.AccessKey)
	require.Equal(t, "flag-secret", pc.storage.Minio.SecretKey)
}
