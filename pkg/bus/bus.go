package bus

import (
	"context"
	"time"
)

// Message is one delivery of a published payload.
type Message struct {
	ID      string
	Topic   string
	Payload []byte
	// Attempt counts deliveries of this message to the subscriber group, starting at 1.
	Attempt int
}

// Handler processes a delivered message. Returning an error leaves the message
// unacknowledged so it is delivered again.
type Handler func(ctx context.Context, msg Message) error

//go:generate mockgen -source=bus.go -destination=mock/bus_mock.go -package=bus_mock

// Publisher publishes opaque payloads to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// Subscriber delivers messages of a topic to a consumer group. Subscribe
// blocks until ctx is canceled and in-flight handlers have returned.
type Subscriber interface {
	Subscribe(ctx context.Context, topic, group string, handler Handler) error
	Close() error
}

// Bus is a topic-based publish/subscribe transport with at-least-once delivery.
type Bus interface {
	Publisher
	Subscriber
}

// Driver names a Bus implementation.
type Driver string

const (
	// DriverRedis uses Redis Streams consumer groups.
	DriverRedis Driver = "redis"
	// DriverKafka uses Kafka consumer groups.
	DriverKafka Driver = "kafka"
	// DriverMemory keeps everything in process.
	DriverMemory Driver = "memory"
)

// Config holds the delivery settings shared by every driver.
type Config struct {
	Driver   Driver `env:"DRIVER" envDefault:"redis"`
	Consumer string `env:"CONSUMER_NAME"`

	Concurrency       int           `env:"CONCURRENCY" envDefault:"1"`
	BatchSize         int64         `env:"BATCH_SIZE" envDefault:"10"`
	BlockTimeout      time.Duration `env:"BLOCK_TIMEOUT" envDefault:"2s"`
	VisibilityTimeout time.Duration `env:"VISIBILITY_TIMEOUT" envDefault:"30s"`
	ReclaimInterval   time.Duration `env:"RECLAIM_INTERVAL" envDefault:"10s"`
	MaxDeliveries     int           `env:"MAX_DELIVERIES" envDefault:"5"`
	StreamMaxLen      int64         `env:"STREAM_MAX_LEN" envDefault:"100000"`
}

// DeadLetterTopic is where messages exceeding MaxDeliveries are moved.
func DeadLetterTopic(topic string) string {
	return topic + ".dead"
}

// Normalize fills zero values with usable defaults.
func (c Config) Normalize() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.BlockTimeout <= 0 {
		c.BlockTimeout = 2 * time.Second
	}
	if c.VisibilityTimeout <= 0 {
		c.VisibilityTimeout = 30 * time.Second
	}
	if c.ReclaimInterval <= 0 {
		c.ReclaimInterval = c.VisibilityTimeout / 3
	}
	if c.MaxDeliveries <= 0 {
		c.MaxDeliveries = 5
	}
	return c
}
