package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	api "github.com/weak-head/segy-pipe/api/v1"
	"github.com/weak-head/segy-pipe/internal/metrics"
	"github.com/weak-head/segy-pipe/internal/pipeline"
	"github.com/weak-head/segy-pipe/internal/processor"
	"github.com/weak-head/segy-pipe/internal/sleeper"
	"github.com/weak-head/segy-pipe/internal/storage"
	"github.com/weak-head/segy-pipe/internal/stream"
)

const (
	envMinioAccessKey = "MINIO_ACCESS_KEY"
	envMinioSecretKey = "MINIO_SECRET_KEY"

	shutdownTimeout = 5 * time.Second
)

var (
	// ErrNoDestinationBucket happens when the pipeline has nowhere to store the converted frames.
	ErrNoDestinationBucket = errors.New("no destination bucket")
)

type pipeCfg struct {
	reader  stream.ReaderConfig
	writer  stream.WriterConfig
	topics  stream.TopicConfig
	brokers []string
	storage storage.Config

	destinationBucket string
	metricsAddr       string

	backoffInitial time.Duration
	backoffMax     time.Duration
}

func (c *cli) pipeCommand() *cobra.Command {
	pc := &c.cfg.pipe
	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Convert data frames announced on a kafka topic",
		Long: "Consumes conversion requests from kafka, converts the referenced\n" +
			"objects and publishes the location of the converted SEG-Y objects.",
		Args:    cobra.NoArgs,
		PreRunE: c.initPipeConfig,
		RunE:    c.pipe,
	}

	f := cmd.Flags()
	f.StringSliceVar(&pc.brokers, "brokers", []string{"localhost:9092"}, "kafka brokers")
	f.StringVar(&pc.reader.GroupID, "group-id", engine, "kafka consumer group")
	f.StringVar(&pc.reader.Topic.Name, "input-topic", "raw-frames", "topic of the conversion requests")
	f.IntVar(&pc.reader.MinBytes, "min-bytes", 1, "minimum fetch size")
	f.IntVar(&pc.reader.MaxBytes, "max-bytes", 10e6, "maximum fetch size")
	f.DurationVar(&pc.reader.MaxWait, "max-wait", 10*time.Second, "maximum time to wait for a fetch to fill")
	f.StringVar(&pc.writer.Topic.Name, "output-topic", "segy-frames", "topic of the converted blobs")
	f.StringVar(&pc.writer.Balancer, "balancer", stream.DefaultBalancer, "output partition balancer (roundrobin, leastbytes, hash, crc32, murmur2)")
	f.DurationVar(&pc.writer.BatchTimeout, "batch-timeout", time.Second, "time limit on filling an output batch")
	f.BoolVar(&pc.topics.Create, "create-topics", false, "create the topics if they do not exist")
	f.IntVar(&pc.topics.Partitions, "partitions", 1, "partitions of created topics")
	f.IntVar(&pc.topics.ReplicationFactor, "replication-factor", 1, "replication factor of created topics")

	f.StringVar(&pc.storage.Kind, "storage", storage.KindMinio, "object storage kind (minio, local)")
	f.StringVar(&pc.storage.Local.Root, "storage-root", "", "root directory of the local storage, one directory per bucket")
	f.StringVar(&pc.storage.Minio.Endpoint, "minio-endpoint", "localhost:9000", "object storage endpoint")
	f.StringVar(&pc.storage.Minio.AccessKey, "minio-access-key", "", "object storage access key, "+envMinioAccessKey+" if empty")
	f.StringVar(&pc.storage.Minio.SecretKey, "minio-secret-key", "", "object storage secret key, "+envMinioSecretKey+" if empty")
	f.StringVar(&pc.storage.Minio.Region, "minio-region", "", "object storage region")
	f.BoolVar(&pc.storage.Minio.UseSSL, "minio-ssl", false, "use TLS to reach the object storage")
	f.BoolVar(&pc.storage.CreateBucketIfNotExist, "create-bucket", false, "create the destination bucket if it does not exist")
	f.StringVar(&pc.destinationBucket, "destination-bucket", "segy", "bucket of the converted frames")

	f.StringVar(&pc.metricsAddr, "metrics-addr", ":9090", "listen address of the prometheus endpoint")
	f.DurationVar(&pc.backoffInitial, "backoff-initial", 500*time.Millisecond, "initial retry delay")
	f.DurationVar(&pc.backoffMax, "backoff-max", 30*time.Second, "maximum retry delay")

	return cmd
}

// initPipeConfig completes the pipeline configuration from the environment.
func (c *cli) initPipeConfig(cmd *cobra.Command, args []string) error {
	pc := &c.cfg.pipe

	if pc.storage.Minio.AccessKey == "" {
		pc.storage.Minio.AccessKey = os.Getenv(envMinioAccessKey)
	}
	if pc.storage.Minio.SecretKey == "" {
		pc.storage.Minio.SecretKey = os.Getenv(envMinioSecretKey)
	}

	switch pc.storage.Kind {
	case storage.KindMinio, storage.KindLocal:
	default:
		return fmt.Errorf("%w: %s", storage.ErrUnknownKind, pc.storage.Kind)
	}

	if pc.destinationBucket == "" {
		return ErrNoDestinationBucket
	}

	if len(pc.brokers) == 0 {
		return stream.ErrNoBrokers
	}

	pc.reader.Brokers = pc.brokers
	pc.writer.Brokers = pc.brokers
	for _, topic := range []*stream.TopicConfig{&pc.reader.Topic, &pc.writer.Topic} {
		topic.Create = pc.topics.Create
		topic.Partitions = pc.topics.Partitions
		topic.ReplicationFactor = pc.topics.ReplicationFactor
	}

	return nil
}

func (c *cli) pipe(cmd *cobra.Command, args []string) error {
	pc := c.cfg.pipe
	ctx := cmd.Context()

	registry, err := metrics.NewRegistry()
	if err != nil {
		return err
	}

	reporter, err := metrics.NewReporter(metrics.ServiceInfo{Engine: engine})
	if err != nil {
		return err
	}

	server, err := metrics.NewPrometheusServer(metrics.Config{Addr: pc.metricsAddr}, registry)
	if err != nil {
		return err
	}

	store, err := storage.New(pc.storage, c.log)
	if err != nil {
		return err
	}

	conv, err := processor.NewSegyConverter(c.header())
	if err != nil {
		return err
	}

	proc, err := processor.NewProcessor(
		processor.ProcessorConfig{
			DestinationBucket: pc.destinationBucket,
			DestinationKind:   api.LocationKind(pc.storage.Kind),
		},
		conv,
		store,
		c.log,
	)
	if err != nil {
		return err
	}

	reader, err := stream.NewReader(ctx, pc.reader)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := stream.NewWriter(ctx, pc.writer)
	if err != nil {
		return err
	}
	defer writer.Close()

	backoff, err := sleeper.NewExponentialSleeper(pc.backoffInitial, pc.backoffMax)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(reader, writer, proc, backoff, reporter, c.log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		err := server.Serve()
		if err != nil {
			c.log.WithField("addr", pc.metricsAddr).Error(err, "Metrics server has failed.")
			cancel()
		}
		serveErr <- err
	}()

	runErr := p.Run(ctx)

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.Stop(shutdownCtx); err != nil {
		c.log.Error(err, "Failed to stop the metrics server.")
	}

	if runErr != nil {
		return runErr
	}
	return <-serveErr
}
