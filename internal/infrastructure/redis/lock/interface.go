package lock

import "context"

//go:generate mockgen -source=interface.go -destination=mock/lock_mock.go -package=mock

// OrderLocker serializes processing of a single order across workers.
type OrderLocker interface {
	// Acquire takes the lock for orderID and returns the token needed to
	// release it. It fails with OrderLockedError when another holder exists.
	Acquire(ctx context.Context, orderID string) (string, error)
	// Release drops the lock only if token still owns it.
	Release(ctx context.Context, orderID, token string) error
}
