package lock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

// releaseScript deletes the key only when it still holds the caller's token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

type orderLocker struct {
	client redis.Client
	config *redis.Config
	ttl    time.Duration
	logger logger.Interface
}

// NewOrderLocker creates a SETNX based lock. ttl bounds how long a crashed
// holder can block other workers.
func NewOrderLocker(client redis.Client, config *redis.Config, ttl time.Duration, log logger.Interface) OrderLocker {
	return &orderLocker{
		client: client,
		config: config,
		ttl:    ttl,
		logger: log,
	}
}

func (l *orderLocker) key(orderID string) string {
	return l.config.Key("lock:order:" + orderID)
}

func (l *orderLocker) Acquire(ctx context.Context, orderID string) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(orderID), token, l.ttl)
	if err != nil {
		l.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "lock.Acquire"}, logger.Field{Key: "orderId", Value: orderID})
		return "", errors.TracerFromError(err)
	}
	if !ok {
		return "", errors.New(errors.OrderLockedError, "order is being processed by another worker", "orderId")
	}
	return token, nil
}

func (l *orderLocker) Release(ctx context.Context, orderID, token string) error {
	res, err := l.client.Eval(ctx, releaseScript, []string{l.key(orderID)}, token)
	if err != nil {
		l.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "lock.Release"}, logger.Field{Key: "orderId", Value: orderID})
		return errors.TracerFromError(err)
	}
	if n, ok := res.(int64); !ok || n == 0 {
		l.logger.WarnContext(ctx, "Order lock expired before release",
			logger.Field{Key: "action", Value: "lock.Release"},
			logger.Field{Key: "orderId", Value: orderID},
		)
	}
	return nil
}
