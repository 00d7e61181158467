package redisstream

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	v9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
	mockRedis "github.com/Akhileshait/tradenet/pkg/redis/mock"
)

func newSubscription(b *Bus, handler bus.Handler) *subscription {
	return &subscription{
		bus:     b,
		topic:   "order.submit",
		group:   "execution",
		handler: handler,
		sem:     make(chan struct{}, 1),
	}
}

func TestBus_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mockRedis.NewMockClient(ctrl)
	b := New(mockClient, bus.Config{Consumer: "c1", StreamMaxLen: 1000}, mockLogger.NewMockInterface(ctrl))

	mockClient.EXPECT().XAdd(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, args *v9.XAddArgs) (string, error) {
		assert.Equal(t, "order.submit", args.Stream)
		assert.Equal(t, int64(1000), args.MaxLen)
		assert.True(t, args.Approx)
		assert.Equal(t, []byte(`{"orderId":"o1"}`), args.Values.(map[string]any)[payloadField])
		return "1-0", nil
	})

	require.NoError(t, b.Publish(context.Background(), "order.submit", []byte(`{"orderId":"o1"}`)))
}

func TestBus_SubscribeGroupCreateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mockRedis.NewMockClient(ctrl)
	b := New(mockClient, bus.Config{Consumer: "c1"}, mockLogger.NewMockInterface(ctrl))

	groupErr := errors.New(errors.RedisXGroupError, "no stream", "xgroup")
	mockClient.EXPECT().XGroupCreateMkStream(gomock.Any(), "order.submit", "execution", "0").Return(groupErr)

	err := b.Subscribe(context.Background(), "order.submit", "execution", func(context.Context, bus.Message) error { return nil })
	assert.True(t, errors.IsCode(err, errors.RedisXGroupError))
}

func TestSubscription_Process(t *testing.T) {
	testCases := []struct {
		name       string
		msg        v9.XMessage
		handlerErr error
		mockFn     func(c *mockRedis.MockClient, l *mockLogger.MockInterface)
		expectCall bool
	}{
		{
			name:       "acks after handler success",
			msg:        v9.XMessage{ID: "1-0", Values: map[string]any{payloadField: "p"}},
			expectCall: true,
			mockFn: func(c *mockRedis.MockClient, l *mockLogger.MockInterface) {
				c.EXPECT().XAck(gomock.Any(), "order.submit", "execution", "1-0").Return(int64(1), nil)
			},
		},
		{
			name:       "leaves pending on handler error",
			msg:        v9.XMessage{ID: "2-0", Values: map[string]any{payloadField: "p"}},
			handlerErr: errors.New(errors.DeliveryError, "publish failed", ""),
			expectCall: true,
			mockFn: func(c *mockRedis.MockClient, l *mockLogger.MockInterface) {
				l.EXPECT().WarnContext(gomock.Any(), "message left pending for redelivery", gomock.Any())
			},
		},
		{
			name: "acks entry without payload",
			msg:  v9.XMessage{ID: "3-0", Values: map[string]any{}},
			mockFn: func(c *mockRedis.MockClient, l *mockLogger.MockInterface) {
				l.EXPECT().WarnContext(gomock.Any(), "dropping stream entry without payload", gomock.Any())
				c.EXPECT().XAck(gomock.Any(), "order.submit", "execution", "3-0").Return(int64(1), nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mockRedis.NewMockClient(ctrl)
			mockLog := mockLogger.NewMockInterface(ctrl)
			tc.mockFn(mockClient, mockLog)

			called := false
			s := newSubscription(New(mockClient, bus.Config{Consumer: "c1"}, mockLog), func(_ context.Context, msg bus.Message) error {
				called = true
				assert.Equal(t, []byte("p"), msg.Payload)
				assert.Equal(t, 2, msg.Attempt)
				return tc.handlerErr
			})

			s.process(context.Background(), tc.msg, 2)
			assert.Equal(t, tc.expectCall, called)
		})
	}
}

func TestSubscription_ReclaimDeadLettersExhaustedEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mockRedis.NewMockClient(ctrl)
	mockLog := mockLogger.NewMockInterface(ctrl)

	b := New(mockClient, bus.Config{Consumer: "c1", MaxDeliveries: 3, VisibilityTimeout: time.Minute}, mockLog)

	delivered := make(chan bus.Message, 1)
	s := newSubscription(b, func(_ context.Context, msg bus.Message) error {
		delivered <- msg
		return nil
	})

	stale := v9.XMessage{ID: "5-0", Values: map[string]any{payloadField: "stale"}}
	poison := v9.XMessage{ID: "6-0", Values: map[string]any{payloadField: "poison"}}

	mockClient.EXPECT().XAutoClaim(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, args *v9.XAutoClaimArgs) ([]v9.XMessage, string, error) {
			assert.Equal(t, time.Minute, args.MinIdle)
			assert.Equal(t, "c1", args.Consumer)
			return []v9.XMessage{stale, poison}, "0-0", nil
		})
	mockClient.EXPECT().XPendingExt(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, args *v9.XPendingExtArgs) ([]v9.XPendingExt, error) {
			if args.Start == "5-0" {
				return []v9.XPendingExt{{ID: "5-0", RetryCount: 2}}, nil
			}
			return []v9.XPendingExt{{ID: "6-0", RetryCount: 4}}, nil
		}).Times(2)

	mockClient.EXPECT().XAck(gomock.Any(), "order.submit", "execution", "5-0").Return(int64(1), nil)
	mockClient.EXPECT().XAdd(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, args *v9.XAddArgs) (string, error) {
		assert.Equal(t, "order.submit.dead", args.Stream)
		values := args.Values.(map[string]any)
		assert.Equal(t, "poison", values[payloadField])
		assert.Equal(t, "6-0", values[sourceIDField])
		return "1-0", nil
	})
	mockClient.EXPECT().XAck(gomock.Any(), "order.submit", "execution", "6-0").Return(int64(1), nil)
	mockLog.EXPECT().WarnContext(gomock.Any(), "message moved to dead letter stream", gomock.Any())

	s.reclaim(context.Background())
	s.wg.Wait()

	msg := <-delivered
	assert.Equal(t, "5-0", msg.ID)
	assert.Equal(t, 2, msg.Attempt)
}
