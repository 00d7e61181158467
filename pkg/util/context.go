package util

import (
	"context"

	"github.com/google/uuid"
)

type (
	requestIDKey struct{}
	clientIPKey  struct{}
	actorIDKey   struct{}
)

// NewRequestID returns a uuid-v4 string to use as request id.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID stores id on ctx, generating one when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewRequestID()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithClientIP stores the caller address resolved by the HTTP middleware.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// WithActorID stores the id of the authenticated user.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, id)
}

// GetRequestID returns the request id on ctx, or "".
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

// GetClientIP returns the client ip on ctx, or "".
func GetClientIP(ctx context.Context) string {
	return stringValue(ctx, clientIPKey{})
}

// GetActorID returns the authenticated user id on ctx, or "".
func GetActorID(ctx context.Context) string {
	return stringValue(ctx, actorIDKey{})
}

func stringValue(ctx context.Context, key any) string {
	v, _ := ctx.Value(key).(string)
	return v
}
