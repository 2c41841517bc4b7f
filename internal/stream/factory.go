package stream

import (
	"context"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

const adminTimeout = 10 * time.Second

var (
	// ErrNoBrokers happens when no kafka broker address is configured.
	ErrNoBrokers = errors.New("no brokers provided")

	// ErrNoTopic happens when the topic name is empty.
	ErrNoTopic = errors.New("no topic provided")
)

// DefaultBalancer is used when the balancer name is empty or unknown.
const DefaultBalancer = "leastbytes"

var balancers = map[string]func() kafka.Balancer{
	"roundrobin": func() kafka.Balancer { return &kafka.RoundRobin{} },
	"leastbytes": func() kafka.Balancer { return &kafka.LeastBytes{} },
	"hash":       func() kafka.Balancer { return &kafka.Hash{} },
	"crc32":      func() kafka.Balancer { return &kafka.CRC32Balancer{} },
	"murmur2":    func() kafka.Balancer { return &kafka.Murmur2Balancer{} },
}

// topicCreator is the part of the kafka admin client used to create topics.
type topicCreator interface {
	CreateTopics(ctx context.Context, req *kafka.CreateTopicsRequest) (*kafka.CreateTopicsResponse, error)
}

// NewReader creates a consumer group reader,
// creating the topic first if configured to.
func NewReader(ctx context.Context, config ReaderConfig) (*kafka.Reader, error) {
	if err := validate(config.Brokers, config.Topic); err != nil {
		return nil, err
	}

	if err := ensureTopic(ctx, newAdminClient(config.Brokers), config.Topic); err != nil {
		return nil, err
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  config.Brokers,
		GroupID:  config.GroupID,
		Topic:    config.Topic.Name,
		MinBytes: config.MinBytes,
		MaxBytes: config.MaxBytes,
		MaxWait:  config.MaxWait,
	}), nil
}

// NewWriter creates a writer for the configured topic.
func NewWriter(ctx context.Context, config WriterConfig) (*kafka.Writer, error) {
	if err := validate(config.Brokers, config.Topic); err != nil {
		return nil, err
	}

	if err := ensureTopic(ctx, newAdminClient(config.Brokers), config.Topic); err != nil {
		return nil, err
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic.Name,
		Balancer:     createBalancer(config.Balancer),
		BatchTimeout: config.BatchTimeout,
	}, nil
}

func validate(brokers []string, topic TopicConfig) error {
	if len(brokers) == 0 {
		return ErrNoBrokers
	}
	if topic.Name == "" {
		return ErrNoTopic
	}
	return nil
}

func newAdminClient(brokers []string) *kafka.Client {
	return &kafka.Client{
		Addr:    kafka.TCP(brokers...),
		Timeout: adminTimeout,
	}
}

// ensureTopic creates the topic if configured to.
// A topic that already exists is not an error.
func ensureTopic(ctx context.Context, admin topicCreator, topic TopicConfig) error {
	if !topic.Create {
		return nil
	}

	resp, err := admin.CreateTopics(ctx, &kafka.CreateTopicsRequest{
		Topics: []kafka.TopicConfig{{
			Topic:             topic.Name,
			NumPartitions:     topic.Partitions,
			ReplicationFactor: topic.ReplicationFactor,
		}},
	})
	if err != nil {
		return err
	}

	if err := resp.Errors[topic.Name]; err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return err
	}
	return nil
}

// createBalancer picks the partition balancer by name.
func createBalancer(name string) kafka.Balancer {
	if create, ok := balancers[name]; ok {
		return create()
	}
	return balancers[DefaultBalancer]()
}
