package status

import (
	"context"

	"github.com/Akhileshait/tradenet/internal/domain/order"
	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/util"
)

// Consumer feeds status events to the router usecase. Delivery to a client
// is best effort, so every message is acknowledged.
type Consumer struct {
	subscriber bus.Subscriber
	group      string

	routerUsecase order.RouterUsecase
	logger        logger.Interface
}

// NewConsumer creates a new Consumer reading as group.
func NewConsumer(subscriber bus.Subscriber, group string, routerUsecase order.RouterUsecase, logger logger.Interface) *Consumer {
	return &Consumer{
		subscriber:    subscriber,
		group:         group,
		routerUsecase: routerUsecase,
		logger:        logger,
	}
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.InfoContext(ctx, "starting status consumer", logger.Field{
		Key:   "action",
		Value: "status_consumer_start",
	})

	err := c.subscriber.Subscribe(ctx, v1.TopicStatus, c.group, c.Handle)

	c.logger.InfoContext(ctx, "status consumer stopped", logger.Field{
		Key:   "action",
		Value: "status_consumer_stop",
	})
	return err
}

// Handle routes one delivery.
func (c *Consumer) Handle(ctx context.Context, msg bus.Message) error {
	c.routerUsecase.Route(util.WithRequestID(ctx, msg.ID), msg.Payload)
	return nil
}
