package router

import (
	"context"

	"github.com/Akhileshait/tradenet/internal/domain/connection"
	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	"github.com/Akhileshait/tradenet/internal/metrics"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

type usecase struct {
	registry connection.Registry
	logger   logger.Interface
}

// NewUsecase creates a new router usecase.
func NewUsecase(registry connection.Registry, logger logger.Interface) *usecase {
	return &usecase{registry: registry, logger: logger}
}

// Route forwards payload unchanged to the live connection of the event's
// user. Events for offline users are dropped.
func (u *usecase) Route(ctx context.Context, payload []byte) bool {
	event, err := v1.StatusEventFromBytes(payload)
	if err != nil {
		u.logger.WarnContext(ctx, "Dropping undecodable status event",
			logger.Field{Key: "action", Value: "router.Route"},
			logger.Field{Key: "error", Value: err.Error()},
		)
		metrics.RoutedEvents.WithLabelValues("invalid").Inc()
		return false
	}
	if event.Data.UserID == "" {
		u.logger.WarnContext(ctx, "Dropping status event without user",
			logger.Field{Key: "action", Value: "router.Route"},
			logger.Field{Key: "orderId", Value: event.Data.OrderID},
		)
		metrics.RoutedEvents.WithLabelValues("invalid").Inc()
		return false
	}

	conn, ok := u.registry.Lookup(event.Data.UserID)
	if !ok || !conn.IsOpen() {
		u.logger.DebugContext(ctx, "User offline, dropping status event",
			logger.Field{Key: "orderId", Value: event.Data.OrderID},
			logger.Field{Key: "user_id", Value: event.Data.UserID},
		)
		metrics.RoutedEvents.WithLabelValues("offline").Inc()
		return false
	}

	if err := conn.Send(payload); err != nil {
		u.logger.WarnContext(ctx, "Failed to forward status event",
			logger.Field{Key: "action", Value: "router.Route"},
			logger.Field{Key: "orderId", Value: event.Data.OrderID},
			logger.Field{Key: "connection", Value: conn.ID()},
			logger.Field{Key: "error", Value: err.Error()},
		)
		metrics.RoutedEvents.WithLabelValues("offline").Inc()
		return false
	}

	metrics.RoutedEvents.WithLabelValues("delivered").Inc()
	return true
}
