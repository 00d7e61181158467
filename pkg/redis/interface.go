package redis

import (
	"context"
	"time"

	v9 "github.com/redis/go-redis/v9"
)

// Client defines the interface for a Redis client.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)

	XAdd(ctx context.Context, args *v9.XAddArgs) (string, error)
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) error
	XReadGroup(ctx context.Context, args *v9.XReadGroupArgs) ([]v9.XStream, error)
	XAck(ctx context.Context, stream, group string, ids ...string) (int64, error)
	XAutoClaim(ctx context.Context, args *v9.XAutoClaimArgs) ([]v9.XMessage, string, error)
	XPendingExt(ctx context.Context, args *v9.XPendingExtArgs) ([]v9.XPendingExt, error)
}
