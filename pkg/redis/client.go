package redis

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger  logger.Interface
	config  *Config
	cmdable redis.UniversalClient
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger logger.Interface, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

// validate reports the first unusable setting.
func (c *Config) validate() string {
	switch {
	case len(c.Addrs) == 0:
		return "Redis addresses are empty"
	case c.Mode != Standalone && c.Mode != Cluster:
		return "Invalid Redis mode"
	case c.ConnectTimeout <= 0:
		return "Invalid Redis connect timeout"
	case c.PoolSize <= 0:
		return "Invalid Redis pool size"
	case c.MaxIdleConns < 0:
		return "Invalid Redis max idle connections"
	case c.ConnMaxLifetime <= 0:
		return "Invalid Redis connection max lifetime"
	case c.ConnMaxIdleTime <= 0:
		return "Invalid Redis connection max idle time"
	case c.PoolTimeout <= 0:
		return "Invalid Redis pool timeout"
	case c.MaxRetries < 0:
		return "Invalid Redis max retries"
	case c.MinRetryBackoff < 0 || c.MaxRetryBackoff < 0:
		return "Invalid Redis retry backoff"
	}
	return ""
}

// Connect validates the config, dials and pings. The go-redis pool redials
// broken connections on its own after that.
func (c *client) Connect(ctx context.Context) error {
	if c.config == nil {
		return errors.NewErrorDetails("Redis config is nil", string(errors.RedisConfigError), "connect")
	}
	if problem := c.config.validate(); problem != "" {
		return errors.NewErrorDetails(problem, string(errors.RedisConfigError), "connect")
	}

	cfg := c.config
	if cfg.Mode == Cluster {
		c.cmdable = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           cfg.Addrs,
			Username:        cfg.Username,
			Password:        cfg.Password,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: cfg.MinRetryBackoff,
			MaxRetryBackoff: cfg.MaxRetryBackoff,
			DialTimeout:     cfg.ConnectTimeout,
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			PoolTimeout:     cfg.PoolTimeout,
		})
	} else {
		c.cmdable = redis.NewClient(&redis.Options{
			Addr:            cfg.Addrs[0],
			Username:        cfg.Username,
			Password:        cfg.Password,
			DB:              cfg.DB,
			MaxRetries:      cfg.MaxRetries,
			MinRetryBackoff: cfg.MinRetryBackoff,
			MaxRetryBackoff: cfg.MaxRetryBackoff,
			DialTimeout:     cfg.ConnectTimeout,
			PoolSize:        cfg.PoolSize,
			MinIdleConns:    cfg.MinIdleConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			PoolTimeout:     cfg.PoolTimeout,
		})
	}

	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.RedisConnectionError, err, "connect")
	}

	c.logger.Info("Connected to Redis",
		logger.Field{Key: "mode", Value: cfg.Mode},
		logger.Field{Key: "addrs", Value: strings.Join(cfg.Addrs, ",")},
	)
	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.cmdable == nil {
		return nil
	}
	if err := c.cmdable.Close(); err != nil {
		return errors.Wrap(errors.RedisDisconnectionError, err, "disconnect")
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewErrorDetails("Failed to ping Redis", string(errors.RedisPingError), "ping")
	}
	return nil
}

func (c *client) SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	ok, err := c.cmdable.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		return false, errors.NewErrorDetails("Failed to set value with NX in Redis", string(errors.RedisSetNXError), "setnx")
	}
	return ok, nil
}

func (c *client) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	res, err := c.cmdable.Eval(ctx, script, keys, args...).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewErrorDetails("Failed to run script in Redis", string(errors.RedisEvalError), "eval")
	}
	return res, nil
}

func (c *client) XAdd(ctx context.Context, args *redis.XAddArgs) (string, error) {
	streamID, err := c.cmdable.XAdd(ctx, args).Result()
	if err != nil {
		return "", errors.Wrap(errors.RedisXAddError, err, "xadd")
	}
	return streamID, nil
}

// XGroupCreateMkStream creates the consumer group and the stream when missing.
// An already existing group is not an error.
func (c *client) XGroupCreateMkStream(ctx context.Context, stream, group, start string) error {
	err := c.cmdable.XGroupCreateMkStream(ctx, stream, group, start).Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return errors.Wrap(errors.RedisXGroupError, err, "xgroup")
	}
	return nil
}

// XReadGroup returns no streams and no error when the read blocked until timeout.
func (c *client) XReadGroup(ctx context.Context, args *redis.XReadGroupArgs) ([]redis.XStream, error) {
	streams, err := c.cmdable.XReadGroup(ctx, args).Result()
	if stdErrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.RedisXReadGroupError, err, "xreadgroup")
	}
	return streams, nil
}

func (c *client) XAck(ctx context.Context, stream, group string, ids ...string) (int64, error) {
	acked, err := c.cmdable.XAck(ctx, stream, group, ids...).Result()
	if err != nil {
		return 0, errors.Wrap(errors.RedisXAckError, err, "xack")
	}
	return acked, nil
}

func (c *client) XAutoClaim(ctx context.Context, args *redis.XAutoClaimArgs) ([]redis.XMessage, string, error) {
	messages, next, err := c.cmdable.XAutoClaim(ctx, args).Result()
	if stdErrors.Is(err, redis.Nil) {
		return nil, "0-0", nil
	}
	if err != nil {
		return nil, "", errors.Wrap(errors.RedisXAutoClaimError, err, "xautoclaim")
	}
	return messages, next, nil
}

func (c *client) XPendingExt(ctx context.Context, args *redis.XPendingExtArgs) ([]redis.XPendingExt, error) {
	pending, err := c.cmdable.XPendingExt(ctx, args).Result()
	if err != nil {
		return nil, errors.Wrap(errors.RedisXPendingError, err, "xpending")
	}
	return pending, nil
}
