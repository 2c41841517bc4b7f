package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"
	kafka "github.com/segmentio/kafka-go"

	api "github.com/weak-head/segy-pipe/api/v1"
	"github.com/weak-head/segy-pipe/internal/logger"
)

const (
	// retryFetchCount defines the number of retries
	// to fetch a message from the reader before giving up.
	retryFetchCount = 3

	// retryWriteCount defines the number of retries
	// to write a message to the writer before giving up.
	retryWriteCount = 3

	// retryCommitCount defines the number of retries
	// to commit a message to the reader before giving up.
	retryCommitCount = 3

	// processingKind labels the frames converted by the pipeline.
	processingKind = "segy"
)

const (
	FailureFetch     = "fetch"
	FailureUnmarshal = "unmarshal"
	FailureProcess   = "process"
	FailureMarshal   = "marshal"
	FailureWrite     = "write"
	FailureCommit    = "commit"
)

var (
	// ErrNoReaderProvided happens when reader is not provided.
	ErrNoReaderProvided = errors.New("no reader provided")

	// ErrNoWriterProvided happens when writer is not provided.
	ErrNoWriterProvided = errors.New("no writer provided")

	// ErrNoSleeperProvided happens when sleeper is not provided.
	ErrNoSleeperProvided = errors.New("no sleeper provided")

	// ErrNoProcessorProvided happens when processor is not provided.
	ErrNoProcessorProvided = errors.New("no processor provided")

	// ErrNoReporterProvided happens when reporter is not provided.
	ErrNoReporterProvided = errors.New("no reporter provided")
)

// Reader is a transactional message reader.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Writer is an atomic message writer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Processor defines a data frame processor.
type Processor interface {
	Process(ctx context.Context, frame *api.InputFrame) (*api.ConvertedBlob, error)
}

// Sleeper is a routine sleeper with some sleeping strategy
// and ability to reset the strategy state.
type Sleeper interface {
	Sleep(ctx context.Context)
	Reset()
}

// Reporter is a pipeline status and progress reporter that collects
// and aggregates metrics related to pipeline flow.
type Reporter interface {
	DataFrameProcessed(processingKind string, seconds float64)
	PipelineFailed(failure string)
}

// Pipeline is a data frame conversion pipeline.
type Pipeline struct {
	processor Processor
	reader    Reader
	writer    Writer

	sleeper  Sleeper
	reporter Reporter

	log logger.Log
}

// NewPipeline creates and initializes a new data frame conversion pipeline.
func NewPipeline(
	reader Reader,
	writer Writer,
	processor Processor,
	sleeper Sleeper,
	reporter Reporter,
	log logger.Log,
) (*Pipeline, error) {
	if reader == nil {
		return nil, ErrNoReaderProvided
	}

	if writer == nil {
		return nil, ErrNoWriterProvided
	}

	if processor == nil {
		return nil, ErrNoProcessorProvided
	}

	if sleeper == nil {
		return nil, ErrNoSleeperProvided
	}

	if reporter == nil {
		return nil, ErrNoReporterProvided
	}

	return &Pipeline{
		processor: processor,
		reader:    reader,
		writer:    writer,
		sleeper:   sleeper,
		reporter:  reporter,
		log: log.WithFields(logger.Fields{
			logger.FieldPackage: "pipeline",
			"pipeline_id":       xid.New().String(),
		}),
	}, nil
}

// Run starts the data frame conversion pipeline,
// that ensures that each conversion request is processed at least once.
//
// The conversion request is fetched from the kafka stream and sent to the processor,
// that retrieves the raw data frame from the storage and prepends the SEG-Y header.
// The converted frame is saved back to the storage and the converted blob
// location is sent down the data pipeline to the specified kafka stream.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.log.WithField(logger.FieldFunction, "Pipeline.Run")
	log.Info("Starting the pipeline.")

	failedFetches := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("Pipeline has been stopped.")
			return nil
		default:
			// Nop
		}

		log.Info("Fetching the next message from the reader.")
		m, err := p.reader.FetchMessage(ctx)
		if err != nil {
			log.Error(err, "Failed to fetch a message from the kafka reader")
			p.reporter.PipelineFailed(FailureFetch)

			failedFetches += 1
			if failedFetches >= retryFetchCount {
				log.Errorf(err,
					"Giving up fetching the message. Stopping pipeline because of %d consecutive failed fetches",
					retryFetchCount)
				return err
			} else {
				p.sleeper.Sleep(ctx)
				continue
			}
		}
		failedFetches = 0
		log.Info("Fetched a new message")

		frame := &api.InputFrame{}
		if err := frame.Unmarshal(m.Value); err != nil {
			log.Error(err, "Dropping the message that is not a valid data frame")
			p.reporter.PipelineFailed(FailureUnmarshal)

			if err := p.commit(ctx, log, m); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		convertedBlob, err := p.processor.Process(ctx, frame)
		if err != nil {
			log.Error(err, "Failed to process the data frame")
			p.reporter.PipelineFailed(FailureProcess)
			continue
		}
		p.reporter.DataFrameProcessed(processingKind, time.Since(start).Seconds())

		bytes, err := convertedBlob.Marshal()
		if err != nil {
			log.Error(err, "Failed to marshal the converted blob")
			p.reporter.PipelineFailed(FailureMarshal)
			continue
		}

		msg := kafka.Message{
			Key:   []byte(convertedBlob.FrameId),
			Value: bytes,
		}

		if err := p.write(ctx, log, msg); err != nil {
			return err
		}

		if err := p.commit(ctx, log, m); err != nil {
			return err
		}

		p.sleeper.Reset()
	}
}

// write writes the message, retrying up to retryWriteCount times.
func (p *Pipeline) write(ctx context.Context, log logger.Log, msg kafka.Message) error {
	writeAttempt := 0
	for {
		err := p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}

		log.Error(err, "Failed to write the message to the kafka writer")
		p.reporter.PipelineFailed(FailureWrite)

		writeAttempt += 1
		if writeAttempt >= retryWriteCount {
			log.Errorf(err,
				"Giving up writing the message. Stopping pipeline because of %d consecutive failed writes",
				retryWriteCount)
			return err
		}
		p.sleeper.Sleep(ctx)
	}
}

// commit commits the message, retrying up to retryCommitCount times.
func (p *Pipeline) commit(ctx context.Context, log logger.Log, m kafka.Message) error {
	commitAttempt := 0
	for {
		err := p.reader.CommitMessages(ctx, m)
		if err == nil {
			return nil
		}

		log.Error(err, "Failed to commit read message to the kafka reader")
		p.reporter.PipelineFailed(FailureCommit)

		commitAttempt += 1
		if commitAttempt >= retryCommitCount {
			log.Errorf(err,
				"Giving up committing the message. Stopping pipeline because of %d consecutive failed commits",
				retryCommitCount)
			return err
		}
		p.sleeper.Sleep(ctx)
	}
}
