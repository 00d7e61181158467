package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

const groupBuffer = 1024

type topic struct {
	backlog []bus.Message
	groups  map[string]chan bus.Message
}

// Bus is an in-process bus. Each consumer group of a topic receives every
// message; messages published before the first subscription are held until
// a group subscribes.
type Bus struct {
	config bus.Config
	logger logger.Interface

	mu     sync.Mutex
	topics map[string]*topic
	seq    atomic.Uint64
	closed bool
}

var _ bus.Bus = (*Bus)(nil)

// New creates an in-process bus.
func New(config bus.Config, log logger.Interface) *Bus {
	return &Bus{
		config: config.Normalize(),
		logger: log,
		topics: make(map[string]*topic),
	}
}

func (b *Bus) topic(name string) *topic {
	t, ok := b.topics[name]
	if !ok {
		t = &topic{groups: make(map[string]chan bus.Message)}
		b.topics[name] = t
	}
	return t
}

// Publish enqueues payload for every group subscribed to topicName.
func (b *Bus) Publish(ctx context.Context, topicName string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New(errors.DeliveryError, "bus is closed", topicName)
	}

	msg := bus.Message{
		ID:      fmt.Sprintf("%d", b.seq.Add(1)),
		Topic:   topicName,
		Payload: append([]byte(nil), payload...),
		Attempt: 1,
	}

	t := b.topic(topicName)
	if len(t.groups) == 0 {
		t.backlog = append(t.backlog, msg)
		return nil
	}

	for group, ch := range t.groups {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return errors.Wrap(errors.DeliveryError, ctx.Err(), topicName)
		default:
			return errors.New(errors.DeliveryError, fmt.Sprintf("group %s is full", group), topicName)
		}
	}

	return nil
}

// Subscribe runs Concurrency handlers for group until ctx is canceled.
func (b *Bus) Subscribe(ctx context.Context, topicName, group string, handler bus.Handler) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New(errors.DeliveryError, "bus is closed", topicName)
	}
	t := b.topic(topicName)
	ch, ok := t.groups[group]
	if !ok {
		ch = make(chan bus.Message, groupBuffer)
		t.groups[group] = ch
		for _, msg := range t.backlog {
			ch <- msg
		}
		t.backlog = nil
	}
	b.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < b.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-ch:
					b.handle(ctx, ch, group, msg, handler)
				}
			}
		}()
	}

	wg.Wait()
	return nil
}

func (b *Bus) handle(ctx context.Context, ch chan bus.Message, group string, msg bus.Message, handler bus.Handler) {
	err := handler(context.WithoutCancel(ctx), msg)
	if err == nil {
		return
	}

	fields := []logger.Field{
		{Key: "action", Value: "handle_message"},
		{Key: "topic", Value: msg.Topic},
		{Key: "group", Value: group},
		{Key: "messageId", Value: msg.ID},
		{Key: "attempt", Value: msg.Attempt},
	}

	if msg.Attempt >= b.config.MaxDeliveries {
		b.logger.ErrorContext(ctx, err, append(fields, logger.Field{Key: "deadLetter", Value: true})...)
		if pubErr := b.Publish(ctx, bus.DeadLetterTopic(msg.Topic), msg.Payload); pubErr != nil {
			b.logger.ErrorContext(ctx, pubErr, fields...)
		}
		return
	}

	b.logger.WarnContext(ctx, "message will be redelivered", append(fields, logger.Field{Key: "error", Value: err.Error()})...)
	msg.Attempt++
	go func() {
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	}()
}

// Close rejects further publishes and subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
