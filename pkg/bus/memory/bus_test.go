package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
)

type collector struct {
	mu   sync.Mutex
	msgs []bus.Message
	got  chan struct{}
}

func newCollector() *collector {
	return &collector{got: make(chan struct{}, 64)}
}

func (c *collector) handler(fail func(bus.Message) error) bus.Handler {
	return func(_ context.Context, msg bus.Message) error {
		c.mu.Lock()
		c.msgs = append(c.msgs, msg)
		c.mu.Unlock()
		c.got <- struct{}{}
		if fail != nil {
			return fail(msg)
		}
		return nil
	}
}

func (c *collector) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d", i+1)
		}
	}
}

func (c *collector) snapshot() []bus.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bus.Message(nil), c.msgs...)
}

func TestBus_DeliversBacklogAndLiveMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := New(bus.Config{}, mockLogger.NewMockInterface(ctrl))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, b.Publish(ctx, "order.submit", []byte("first")))

	c := newCollector()
	done := make(chan struct{})
	go func() {
		_ = b.Subscribe(ctx, "order.submit", "worker", c.handler(nil))
		close(done)
	}()

	c.wait(t, 1)
	require.NoError(t, b.Publish(ctx, "order.submit", []byte("second")))
	c.wait(t, 1)

	msgs := c.snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", string(msgs[0].Payload))
	assert.Equal(t, "second", string(msgs[1].Payload))
	assert.Equal(t, 1, msgs[0].Attempt)

	cancel()
	<-done
}

func TestBus_RedeliversThenDeadLetters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLog := mockLogger.NewMockInterface(ctrl)
	mockLog.EXPECT().WarnContext(gomock.Any(), "message will be redelivered", gomock.Any()).Times(2)
	mockLog.EXPECT().ErrorContext(gomock.Any(), gomock.Any(), gomock.Any()).Times(1)

	b := New(bus.Config{MaxDeliveries: 3}, mockLog)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := newCollector()
	dead := newCollector()

	go func() {
		_ = b.Subscribe(ctx, "order.submit", "worker", failing.handler(func(bus.Message) error {
			return errors.New(errors.ExchangeError, "boom", "")
		}))
	}()
	go func() {
		_ = b.Subscribe(ctx, bus.DeadLetterTopic("order.submit"), "ops", dead.handler(nil))
	}()

	require.NoError(t, b.Publish(ctx, "order.submit", []byte("poison")))

	failing.wait(t, 3)
	dead.wait(t, 1)

	attempts := []int{}
	for _, m := range failing.snapshot() {
		attempts = append(attempts, m.Attempt)
	}
	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Equal(t, "poison", string(dead.snapshot()[0].Payload))
}

func TestBus_PublishAfterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := New(bus.Config{}, mockLogger.NewMockInterface(ctrl))
	require.NoError(t, b.Close())

	err := b.Publish(context.Background(), "order.status", []byte("x"))
	assert.True(t, errors.IsCode(err, errors.DeliveryError))
}
