package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/Akhileshait/tradenet/pkg/backoff"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

// messageReader is the part of *kafka.Reader the consume loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// messageWriter is the part of *kafka.Writer the bus uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Bus maps topics to Kafka topics and subscriber groups to consumer groups.
// Offsets are committed only once the handler succeeded or the message was
// moved to the dead-letter topic after MaxDeliveries attempts.
type Bus struct {
	writer messageWriter
	config bus.Config
	kafka  Config
	logger logger.Interface
	retry  backoff.Backoff

	mu      sync.Mutex
	readers []*kafka.Reader
}

var _ bus.Bus = (*Bus)(nil)

// New creates a Kafka bus.
func New(kafkaConfig Config, config bus.Config, log logger.Interface) *Bus {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(kafkaConfig.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           kafkaConfig.BatchTimeout,
		AllowAutoTopicCreation: true,
	}

	return &Bus{
		writer: writer,
		config: config.Normalize(),
		kafka:  kafkaConfig,
		logger: log,
		retry:  backoff.Default(),
	}
}

// Publish writes payload to topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Value: payload}); err != nil {
		return errors.Wrap(errors.DeliveryError, err, topic)
	}
	return nil
}

// Subscribe starts Concurrency readers in group; Kafka spreads the topic
// partitions across them.
func (b *Bus) Subscribe(ctx context.Context, topic, group string, handler bus.Handler) error {
	var wg sync.WaitGroup
	for i := 0; i < b.config.Concurrency; i++ {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     b.kafka.Brokers,
			Topic:       topic,
			GroupID:     group,
			MinBytes:    b.kafka.MinBytes,
			MaxBytes:    b.kafka.MaxBytes,
			MaxWait:     b.kafka.MaxWait,
			StartOffset: kafka.FirstOffset,
		})
		b.mu.Lock()
		b.readers = append(b.readers, reader)
		b.mu.Unlock()

		wg.Add(1)
		go func(r *kafka.Reader) {
			defer wg.Done()
			b.consume(ctx, r, topic, group, handler)
		}(reader)
	}

	wg.Wait()
	return nil
}

func (b *Bus) consume(ctx context.Context, r messageReader, topic, group string, handler bus.Handler) {
	fields := []logger.Field{
		{Key: "topic", Value: topic},
		{Key: "group", Value: group},
	}

	failures := 0
	for ctx.Err() == nil {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			b.logger.ErrorContext(ctx, err, append(fields, logger.Field{Key: "action", Value: "fetch_message"})...)
			_ = b.retry.Sleep(ctx, failures)
			continue
		}
		failures = 0

		// The offset stays uncommitted when delivery stopped early, so the
		// group reads the message again after a restart or rebalance.
		if err := b.deliver(ctx, topic, group, msg, handler); err != nil {
			return
		}

		if err := r.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
			b.logger.ErrorContext(ctx, err, append(fields, logger.Field{Key: "action", Value: "commit_message"})...)
		}
	}
}

// deliver runs handler until it succeeds or MaxDeliveries is reached, in
// which case the message is written to the dead-letter topic, retrying that
// write until it succeeds. It returns an error only when ctx ended first;
// the message was then neither handled nor moved.
func (b *Bus) deliver(ctx context.Context, topic, group string, msg kafka.Message, handler bus.Handler) error {
	work := context.WithoutCancel(ctx)
	id := messageID(msg)
	for attempt := 1; ; attempt++ {
		err := handler(work, bus.Message{
			ID:      id,
			Topic:   topic,
			Payload: msg.Value,
			Attempt: attempt,
		})
		if err == nil {
			return nil
		}

		fields := []logger.Field{
			{Key: "topic", Value: topic},
			{Key: "group", Value: group},
			{Key: "messageId", Value: id},
			{Key: "attempt", Value: attempt},
			{Key: "error", Value: err.Error()},
		}

		if attempt >= b.config.MaxDeliveries {
			return b.deadLetter(ctx, topic, msg, fields)
		}

		b.logger.WarnContext(ctx, "retrying message", fields...)
		if sleepErr := b.retry.Sleep(ctx, attempt); sleepErr != nil {
			return sleepErr
		}
	}
}

func (b *Bus) deadLetter(ctx context.Context, topic string, msg kafka.Message, fields []logger.Field) error {
	for failures := 1; ; failures++ {
		dlErr := b.Publish(context.WithoutCancel(ctx), bus.DeadLetterTopic(topic), msg.Value)
		if dlErr == nil {
			b.logger.WarnContext(ctx, "message moved to dead letter topic", fields...)
			return nil
		}

		b.logger.ErrorContext(ctx, dlErr, append(fields, logger.Field{Key: "action", Value: "dead_letter"})...)
		if sleepErr := b.retry.Sleep(ctx, failures); sleepErr != nil {
			return sleepErr
		}
	}
}

func messageID(msg kafka.Message) string {
	return fmt.Sprintf("%d/%d", msg.Partition, msg.Offset)
}

// Close closes the writer and every reader started by Subscribe.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for _, r := range b.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.readers = nil

	if err := b.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
