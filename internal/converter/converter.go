package converter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/weak-head/segy-pipe/internal/logger"
	"github.com/weak-head/segy-pipe/internal/segy"
)

const (
	// DefaultSourcePath is the raw input converted when no path is given.
	DefaultSourcePath = "input.dat"

	// DefaultDestinationPath is the output written when no path is given.
	DefaultDestinationPath = "output.segy"

	// DefaultChunkSize is the size of the streaming copy buffer.
	DefaultChunkSize = 64 * 1024

	ModeStreaming = "streaming"
	ModeBuffered  = "buffered"
)

var (
	// ErrNoReporterProvided happens when reporter is not provided.
	ErrNoReporterProvided = errors.New("no reporter provided")

	// ErrInvalidChunkSize happens when the chunk size is negative.
	ErrInvalidChunkSize = errors.New("invalid chunk size")
)

// Config
type Config struct {
	Header segy.Header

	// ChunkSize is the streaming copy buffer size, DefaultChunkSize if zero.
	ChunkSize int

	// Buffered reads the whole source into memory
	// before the destination is opened.
	Buffered bool
}

// Reporter collects conversion metrics.
type Reporter interface {
	ConversionFinished(mode string, seconds float64, payloadBytes int64)
	ConversionFailed(failure string)
}

// Result describes a completed conversion.
type Result struct {
	Source       string
	Destination  string
	HeaderBytes  int64
	PayloadBytes int64
	Duration     time.Duration
}

// Converter writes the header block followed by
// a verbatim copy of the source file.
type Converter struct {
	conf     Config
	reporter Reporter

	log logger.Log
}

// NewConverter creates a file converter.
// It returns an error if the configuration is invalid.
func NewConverter(conf Config, reporter Reporter, log logger.Log) (*Converter, error) {
	if reporter == nil {
		return nil, ErrNoReporterProvided
	}

	if err := conf.Header.Validate(); err != nil {
		return nil, err
	}

	if conf.ChunkSize < 0 {
		return nil, ErrInvalidChunkSize
	}

	if conf.ChunkSize == 0 {
		conf.ChunkSize = DefaultChunkSize
	}

	return &Converter{
		conf:     conf,
		reporter: reporter,
		log:      log.WithField(logger.FieldPackage, "converter"),
	}, nil
}

// Convert writes the header and the content of sourcePath to destPath.
//
// If the source can not be opened, destPath is neither created nor modified.
// A regular destination file is only replaced once the conversion has
// completed, so a failed conversion leaves it untouched. The source and
// the destination may name the same file.
func (c *Converter) Convert(ctx context.Context, sourcePath, destPath string) (*Result, error) {
	log := c.log.WithFields(logger.Fields{
		logger.FieldFunction: "Converter.Convert",
		"source":             sourcePath,
		"destination":        destPath,
		"mode":               c.mode(),
	})
	log.Info("Converting the source file.")

	start := time.Now()
	result, err := c.convert(ctx, sourcePath, destPath)
	if err != nil {
		c.reporter.ConversionFailed(Failure(err))
		log.Error(err, "Failed to convert the source file.")
		return nil, err
	}
	result.Duration = time.Since(start)

	c.reporter.ConversionFinished(c.mode(), result.Duration.Seconds(), result.PayloadBytes)
	log.WithFields(logger.Fields{
		"header_bytes":  result.HeaderBytes,
		"payload_bytes": result.PayloadBytes,
	}).Info("Source file has been converted.")

	return result, nil
}

func (c *Converter) convert(ctx context.Context, sourcePath, destPath string) (*Result, error) {
	source, err := openSource(sourcePath)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	var payload io.Reader = source
	if c.conf.Buffered {
		data, err := io.ReadAll(source)
		if err != nil {
			return nil, &Error{Kind: ErrSourceRead, Path: sourcePath, Err: err}
		}
		source.Close()
		payload = bytes.NewReader(data)
	}

	dest, err := openDestination(destPath)
	if err != nil {
		return nil, err
	}

	result, err := c.write(ctx, dest, payload, sourcePath, destPath)
	if err != nil {
		dest.abort()
		return nil, err
	}

	if err := dest.commit(); err != nil {
		return nil, &Error{Kind: ErrDestinationWrite, Path: destPath, Err: err}
	}

	return result, nil
}

// write copies the header and the payload to dest in chunks.
func (c *Converter) write(
	ctx context.Context,
	dest io.Writer,
	payload io.Reader,
	sourcePath string,
	destPath string,
) (*Result, error) {
	headerBytes, err := c.conf.Header.WriteTo(dest)
	if err != nil {
		return nil, &Error{Kind: ErrDestinationWrite, Path: destPath, Err: err}
	}

	var payloadBytes int64
	buf := make([]byte, c.conf.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, readErr := payload.Read(buf)
		if n > 0 {
			m, err := dest.Write(buf[:n])
			payloadBytes += int64(m)
			if err == nil && m != n {
				err = io.ErrShortWrite
			}
			if err != nil {
				return nil, &Error{Kind: ErrDestinationWrite, Path: destPath, Err: err}
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, &Error{Kind: ErrSourceRead, Path: sourcePath, Err: readErr}
		}
	}

	return &Result{
		Source:       sourcePath,
		Destination:  destPath,
		HeaderBytes:  headerBytes,
		PayloadBytes: payloadBytes,
	}, nil
}

func (c *Converter) mode() string {
	if c.conf.Buffered {
		return ModeBuffered
	}
	return ModeStreaming
}

// openSource opens the source file and makes sure it is not a directory.
func openSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: ErrSourceOpen, Path: path, Err: err}
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &Error{Kind: ErrSourceOpen, Path: path, Err: err}
	}

	if st.IsDir() {
		f.Close()
		return nil, &Error{Kind: ErrSourceOpen, Path: path, Err: ErrIsDirectory}
	}

	return f, nil
}
