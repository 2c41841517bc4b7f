package stream

import "time"

// TopicConfig describes the topic and how to create it when missing.
type TopicConfig struct {
	Name              string
	Create            bool
	Partitions        int
	ReplicationFactor int
}

// ReaderConfig configures the consumer of conversion requests.
type ReaderConfig struct {
	Brokers []string
	Topic   TopicConfig

	GroupID  string
	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

// WriterConfig configures the producer of conversion results.
type WriterConfig struct {
	Brokers []string
	Topic   TopicConfig

	Balancer     string
	BatchTimeout time.Duration
}
