package registry

import (
	"sync"

	"github.com/Akhileshait/tradenet/internal/domain/connection"
	"github.com/Akhileshait/tradenet/internal/metrics"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

// Registry holds at most one live connection per user.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]connection.Conn
	logger logger.Interface
}

// New creates an empty registry.
func New(log logger.Interface) *Registry {
	return &Registry{
		conns:  make(map[string]connection.Conn),
		logger: log,
	}
}

// Register stores conn for its user. A previously registered connection is
// closed after it has been replaced.
func (r *Registry) Register(conn connection.Conn) {
	r.mu.Lock()
	previous, ok := r.conns[conn.UserID()]
	r.conns[conn.UserID()] = conn
	size := len(r.conns)
	r.mu.Unlock()

	metrics.Connections.Set(float64(size))

	if ok && previous != conn {
		r.logger.Info("Connection superseded",
			logger.Field{Key: "action", Value: "registry.Register"},
			logger.Field{Key: "user_id", Value: conn.UserID()},
			logger.Field{Key: "previous", Value: previous.ID()},
			logger.Field{Key: "connection", Value: conn.ID()},
		)
		previous.Close(connection.CloseSuperseded, "superseded by a newer connection")
	}
}

// Unregister removes conn if it is still the registered connection of its
// user. It reports whether anything was removed.
func (r *Registry) Unregister(conn connection.Conn) bool {
	r.mu.Lock()
	current, ok := r.conns[conn.UserID()]
	removed := ok && current == conn
	if removed {
		delete(r.conns, conn.UserID())
	}
	size := len(r.conns)
	r.mu.Unlock()

	metrics.Connections.Set(float64(size))
	return removed
}

// Lookup returns the user's registered connection.
func (r *Registry) Lookup(userID string) (connection.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
