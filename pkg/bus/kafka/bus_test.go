package kafka

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhileshait/tradenet/pkg/backoff"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
)

func TestMessageID(t *testing.T) {
	assert.Equal(t, "3/42", messageID(kafka.Message{Partition: 3, Offset: 42}))
}

func TestBus_DeliverRetriesUntilSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLog := mockLogger.NewMockInterface(ctrl)
	mockLog.EXPECT().WarnContext(gomock.Any(), "retrying message", gomock.Any()).Times(2)

	b := New(Config{Brokers: []string{"localhost:9092"}}, bus.Config{MaxDeliveries: 5}, mockLog)
	b.retry = backoff.Backoff{Min: time.Millisecond, Max: time.Millisecond}

	attempts := []int{}
	b.deliver(context.Background(), "order.submit", "execution", kafka.Message{Value: []byte("p")},
		func(_ context.Context, msg bus.Message) error {
			attempts = append(attempts, msg.Attempt)
			if msg.Attempt < 3 {
				return errors.New(errors.OrderLockedError, "locked", "")
			}
			return nil
		})

	assert.Equal(t, []int{1, 2, 3}, attempts)
}

// queueReader hands out errs, then msgs, then blocks until ctx is done.
type queueReader struct {
	mu      sync.Mutex
	errs    []error
	msgs    []kafka.Message
	fetches int
	commits []kafka.Message
}

func (r *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	r.fetches++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *queueReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, msgs...)
	return nil
}

func (r *queueReader) counts() (fetches, commits int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches, len(r.commits)
}

// flakyWriter fails the first failures writes; a negative value fails all.
type flakyWriter struct {
	mu       sync.Mutex
	failures int
	topics   []string
}

func (w *flakyWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range msgs {
		w.topics = append(w.topics, m.Topic)
	}
	if w.failures != 0 {
		if w.failures > 0 {
			w.failures--
		}
		return stdErrors.New("broker unavailable")
	}
	return nil
}

func (w *flakyWriter) Close() error { return nil }

func (w *flakyWriter) writes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.topics...)
}

func newConsumeBus(t *testing.T, w *flakyWriter, retry backoff.Backoff) *Bus {
	ctrl := gomock.NewController(t)
	mockLog := mockLogger.NewMockInterface(ctrl)
	mockLog.EXPECT().ErrorContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLog.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	b := New(Config{Brokers: []string{"localhost:9092"}}, bus.Config{MaxDeliveries: 1}, mockLog)
	b.writer = w
	b.retry = retry
	return b
}

func failingHandler(context.Context, bus.Message) error {
	return errors.New(errors.OrderLockedError, "locked", "")
}

func TestBus_Consume(t *testing.T) {
	fast := backoff.Backoff{Min: time.Millisecond, Max: time.Millisecond}

	testCases := []struct {
		name     string
		writer   *flakyWriter
		runFor   time.Duration
		assertFn func(t *testing.T, r *queueReader, w *flakyWriter)
	}{
		{
			name:   "commits once the dead-letter write succeeds",
			writer: &flakyWriter{failures: 2},
			runFor: 200 * time.Millisecond,
			assertFn: func(t *testing.T, r *queueReader, w *flakyWriter) {
				_, commits := r.counts()
				assert.Equal(t, 1, commits)
				assert.Equal(t, []string{"order.submit.dead", "order.submit.dead", "order.submit.dead"}, w.writes())
			},
		},
		{
			name:   "leaves the offset alone while the dead-letter write fails",
			writer: &flakyWriter{failures: -1},
			runFor: 50 * time.Millisecond,
			assertFn: func(t *testing.T, r *queueReader, w *flakyWriter) {
				_, commits := r.counts()
				assert.Zero(t, commits)
				assert.NotEmpty(t, w.writes())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := newConsumeBus(t, tc.writer, fast)
			r := &queueReader{msgs: []kafka.Message{{Topic: "order.submit", Offset: 7, Value: []byte("p")}}}

			ctx, cancel := context.WithTimeout(context.Background(), tc.runFor)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				b.consume(ctx, r, "order.submit", "execution", failingHandler)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				require.FailNow(t, "consume did not stop after the context ended")
			}
			tc.assertFn(t, r, tc.writer)
		})
	}
}

func TestBus_ConsumeBacksOffOnFetchErrors(t *testing.T) {
	b := newConsumeBus(t, &flakyWriter{}, backoff.Backoff{Min: 20 * time.Millisecond, Max: 20 * time.Millisecond})

	r := &queueReader{}
	for i := 0; i < 1000; i++ {
		r.errs = append(r.errs, stdErrors.New("connection reset"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	b.consume(ctx, r, "order.submit", "execution", failingHandler)

	fetches, commits := r.counts()
	assert.LessOrEqual(t, fetches, 10)
	assert.Zero(t, commits)
}
