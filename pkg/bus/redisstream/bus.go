package redisstream

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"

	v9 "github.com/redis/go-redis/v9"

	"github.com/Akhileshait/tradenet/pkg/backoff"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

const (
	payloadField    = "payload"
	sourceIDField   = "source_id"
	deliveriesField = "deliveries"
)

// Bus maps topics to Redis Streams and subscriber groups to consumer groups.
// Entries are acknowledged only after the handler succeeds; entries left
// pending longer than VisibilityTimeout are claimed again, and entries
// delivered more than MaxDeliveries times move to the dead-letter stream.
type Bus struct {
	client   redis.Client
	config   bus.Config
	consumer string
	logger   logger.Interface
	retry    backoff.Backoff
}

var _ bus.Bus = (*Bus)(nil)

// New creates a Redis Streams bus over an already connected client.
func New(client redis.Client, config bus.Config, log logger.Interface) *Bus {
	config = config.Normalize()
	consumer := config.Consumer
	if consumer == "" {
		host, _ := os.Hostname()
		consumer = host + "-" + strconv.Itoa(os.Getpid())
	}

	return &Bus{
		client:   client,
		config:   config,
		consumer: consumer,
		logger:   log,
		retry:    backoff.Default(),
	}
}

// Publish appends payload to the topic stream.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	_, err := b.client.XAdd(ctx, &v9.XAddArgs{
		Stream: topic,
		MaxLen: b.config.StreamMaxLen,
		Approx: true,
		Values: map[string]any{payloadField: payload},
	})
	return err
}

// Subscribe reads new entries for group, dispatching up to Concurrency
// handlers at a time, and periodically reclaims stale pending entries.
func (b *Bus) Subscribe(ctx context.Context, topic, group string, handler bus.Handler) error {
	if err := b.client.XGroupCreateMkStream(ctx, topic, group, "0"); err != nil {
		return err
	}

	s := &subscription{
		bus:     b,
		topic:   topic,
		group:   group,
		handler: handler,
		sem:     make(chan struct{}, b.config.Concurrency),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reclaimLoop(ctx)
	}()

	s.readLoop(ctx)
	s.wg.Wait()
	return nil
}

// Close is a no-op; the underlying client is owned by the caller.
func (b *Bus) Close() error {
	return nil
}

type subscription struct {
	bus     *Bus
	topic   string
	group   string
	handler bus.Handler
	sem     chan struct{}
	wg      sync.WaitGroup
}

func (s *subscription) fields(extra ...logger.Field) []logger.Field {
	return append([]logger.Field{
		{Key: "topic", Value: s.topic},
		{Key: "group", Value: s.group},
	}, extra...)
}

func (s *subscription) readLoop(ctx context.Context) {
	failures := 0
	for ctx.Err() == nil {
		streams, err := s.bus.client.XReadGroup(ctx, &v9.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.bus.consumer,
			Streams:  []string{s.topic, ">"},
			Count:    s.bus.config.BatchSize,
			Block:    s.bus.config.BlockTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			s.bus.logger.ErrorContext(ctx, err, s.fields(logger.Field{Key: "action", Value: "read_group"})...)
			_ = s.bus.retry.Sleep(ctx, failures)
			continue
		}
		failures = 0

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				s.dispatch(ctx, msg, 1)
			}
		}
	}
}

func (s *subscription) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(s.bus.config.ReclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reclaim(ctx)
		}
	}
}

// reclaim claims entries idle beyond the visibility timeout and either
// redelivers them or moves them to the dead-letter stream.
func (s *subscription) reclaim(ctx context.Context) {
	start := "0-0"
	for ctx.Err() == nil {
		msgs, next, err := s.bus.client.XAutoClaim(ctx, &v9.XAutoClaimArgs{
			Stream:   s.topic,
			Group:    s.group,
			Consumer: s.bus.consumer,
			MinIdle:  s.bus.config.VisibilityTimeout,
			Start:    start,
			Count:    s.bus.config.BatchSize,
		})
		if err != nil {
			s.bus.logger.ErrorContext(ctx, err, s.fields(logger.Field{Key: "action", Value: "auto_claim"})...)
			return
		}

		for _, msg := range msgs {
			deliveries := s.deliveries(ctx, msg.ID)
			if deliveries > int64(s.bus.config.MaxDeliveries) {
				s.deadLetter(ctx, msg, deliveries)
				continue
			}
			s.dispatch(ctx, msg, int(deliveries))
		}

		if len(msgs) == 0 || next == "" || next == "0-0" {
			return
		}
		start = next
	}
}

// deliveries returns how many times id has been delivered to the group,
// counting the claim that just happened.
func (s *subscription) deliveries(ctx context.Context, id string) int64 {
	pending, err := s.bus.client.XPendingExt(ctx, &v9.XPendingExtArgs{
		Stream: s.topic,
		Group:  s.group,
		Start:  id,
		End:    id,
		Count:  1,
	})
	if err != nil || len(pending) == 0 {
		if err != nil {
			s.bus.logger.ErrorContext(ctx, err, s.fields(logger.Field{Key: "action", Value: "pending_count"})...)
		}
		return 2
	}
	return pending[0].RetryCount
}

func (s *subscription) deadLetter(ctx context.Context, msg v9.XMessage, deliveries int64) {
	fields := s.fields(
		logger.Field{Key: "action", Value: "dead_letter"},
		logger.Field{Key: "messageId", Value: msg.ID},
		logger.Field{Key: "deliveries", Value: deliveries},
	)

	_, err := s.bus.client.XAdd(ctx, &v9.XAddArgs{
		Stream: bus.DeadLetterTopic(s.topic),
		MaxLen: s.bus.config.StreamMaxLen,
		Approx: true,
		Values: map[string]any{
			payloadField:    payloadOf(msg),
			sourceIDField:   msg.ID,
			deliveriesField: deliveries,
		},
	})
	if err != nil {
		s.bus.logger.ErrorContext(ctx, err, fields...)
		return
	}

	s.ack(ctx, msg.ID)
	s.bus.logger.WarnContext(ctx, "message moved to dead letter stream", fields...)
}

func (s *subscription) dispatch(ctx context.Context, msg v9.XMessage, attempt int) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	s.wg.Add(1)
	go func() {
		defer func() {
			<-s.sem
			s.wg.Done()
		}()
		s.process(ctx, msg, attempt)
	}()
}

func (s *subscription) process(ctx context.Context, msg v9.XMessage, attempt int) {
	fields := s.fields(
		logger.Field{Key: "messageId", Value: msg.ID},
		logger.Field{Key: "attempt", Value: attempt},
	)

	payload, ok := msg.Values[payloadField]
	if !ok {
		s.bus.logger.WarnContext(ctx, "dropping stream entry without payload", fields...)
		s.ack(ctx, msg.ID)
		return
	}

	// In-flight handlers finish even when the subscription is shutting down.
	handlerCtx := context.WithoutCancel(ctx)
	err := s.handler(handlerCtx, bus.Message{
		ID:      msg.ID,
		Topic:   s.topic,
		Payload: toBytes(payload),
		Attempt: attempt,
	})
	if err != nil {
		s.bus.logger.WarnContext(ctx, "message left pending for redelivery",
			append(fields, logger.Field{Key: "error", Value: err.Error()})...)
		return
	}

	s.ack(handlerCtx, msg.ID)
}

func (s *subscription) ack(ctx context.Context, id string) {
	if _, err := s.bus.client.XAck(ctx, s.topic, s.group, id); err != nil {
		s.bus.logger.ErrorContext(ctx, err, s.fields(
			logger.Field{Key: "action", Value: "ack"},
			logger.Field{Key: "messageId", Value: id},
		)...)
	}
}

func payloadOf(msg v9.XMessage) any {
	if p, ok := msg.Values[payloadField]; ok {
		return p
	}
	return ""
}

func toBytes(v any) []byte {
	switch p := v.(type) {
	case string:
		return []byte(p)
	case []byte:
		return p
	default:
		return nil
	}
}
