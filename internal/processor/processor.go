package processor

import (
	"context"
	"errors"
	"io"
	"strings"

	api "github.com/weak-head/segy-pipe/api/v1"
	"github.com/weak-head/segy-pipe/internal/logger"
)

var (
	// ErrNoConverterProvided happens when converter is not provided.
	ErrNoConverterProvided = errors.New("no converter provided")

	// ErrNoStorageProvided happens when storage is not provided.
	ErrNoStorageProvided = errors.New("no storage provided")

	// ErrNoFrameLocation happens when the frame does not say where it is stored.
	ErrNoFrameLocation = errors.New("no frame location")
)

const (
	contentTypeSEGY = "application/octet-stream"

	// ProcessingKindSegy labels frames converted by the segy converter.
	ProcessingKindSegy = "segy"

	blobPrefix    = "converted_"
	blobExtension = ".segy"
)

// ProcessorConfig tells where the converted blobs go.
type ProcessorConfig struct {
	DestinationBucket string
	DestinationKind   api.LocationKind
}

// Converter is the interface that wraps the basic Convert method.
//
// Convert wraps the data frame stream of the given size into the
// converted blob stream and returns the blob size.
// Convert must return a non-nil error if conversion of the data frame has failed.
type Converter interface {
	Convert(ctx context.Context, from io.Reader, size int64) (to io.Reader, toSize int64, err error)
}

// Storage is an object storage that streams objects in and out.
type Storage interface {
	Open(ctx context.Context, bucket string, objectName string) (io.ReadCloser, int64, error)
	Store(ctx context.Context, bucket string, objectName string, r io.Reader, size int64, contentType string) error
}

// processor pipes a data frame from the storage through the
// converter and back to the storage as a SEG-Y blob.
type processor struct {
	config ProcessorConfig

	converter Converter
	storage   Storage

	log logger.Log
}

// NewProcessor creates a new data frame processor.
// It returns an error if the converter or the storage is missing.
func NewProcessor(
	config ProcessorConfig,
	converter Converter,
	storage Storage,
	log logger.Log,
) (*processor, error) {
	if converter == nil {
		return nil, ErrNoConverterProvided
	}

	if storage == nil {
		return nil, ErrNoStorageProvided
	}

	return &processor{
		config:    config,
		converter: converter,
		storage:   storage,
		log:       log.WithField(logger.FieldPackage, "processor"),
	}, nil
}

// Process streams the frame object through the converter into
// the destination bucket. The frame is never held in memory as a whole.
func (p *processor) Process(ctx context.Context, frame *api.InputFrame) (*api.ConvertedBlob, error) {
	log := p.log.WithFields(logger.Fields{
		logger.FieldFunction: "processor.Process",
		"frame": frame.FrameId,
	})

	src := frame.FrameLocation
	if src == nil {
		log.Error(ErrNoFrameLocation, "Frame has no location.")
		return nil, ErrNoFrameLocation
	}
	dst := p.blobLocation(frame)

	log.WithFields(logger.Fields{
		"source":      src.Bucket + "/" + src.ObjectName,
		"destination": dst.Bucket + "/" + dst.ObjectName,
	}).Info("Processing a new data frame.")

	frameStream, frameSize, err := p.storage.Open(ctx, src.Bucket, src.ObjectName)
	if err != nil {
		log.Error(err, "Failed to retrieve the data frame from the storage.")
		return nil, err
	}
	defer frameStream.Close()

	blob, blobSize, err := p.converter.Convert(ctx, frameStream, frameSize)
	if err != nil {
		log.Error(err, "Failed to convert data frame.")
		return nil, err
	}

	if err := p.storage.Store(ctx, dst.Bucket, dst.ObjectName, blob, blobSize, contentTypeSEGY); err != nil {
		log.Error(err, "Failed to store the converted data frame.")
		return nil, err
	}

	log.WithFields(logger.Fields{
		"frame_size": frameSize,
		"size":       blobSize,
	}).Info("Data frame has been processed.")

	origin := *src
	return &api.ConvertedBlob{
		FrameId:           frame.FrameId,
		FrameLocation:     &origin,
		ConvertedLocation: dst,
	}, nil
}

func (p *processor) blobLocation(frame *api.InputFrame) *api.Location {
	return &api.Location{
		Kind:       p.config.DestinationKind,
		Bucket:     p.config.DestinationBucket,
		ObjectName: blobObjectName(frame),
	}
}

// blobObjectName names the blob after the frame id.
// Path separators in the id do not create nested objects.
func blobObjectName(frame *api.InputFrame) string {
	return blobPrefix + strings.ReplaceAll(frame.FrameId, "/", "_") + blobExtension
}
