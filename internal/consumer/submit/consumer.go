package submit

import (
	"context"

	"github.com/Akhileshait/tradenet/internal/domain/order"
	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/util"
)

// Consumer feeds submit commands to the execution usecase.
type Consumer struct {
	subscriber bus.Subscriber
	group      string

	executionUsecase order.ExecutionUsecase
	logger           logger.Interface
}

// NewConsumer creates a new Consumer reading as group.
func NewConsumer(subscriber bus.Subscriber, group string, executionUsecase order.ExecutionUsecase, logger logger.Interface) *Consumer {
	return &Consumer{
		subscriber:       subscriber,
		group:            group,
		executionUsecase: executionUsecase,
		logger:           logger,
	}
}

// Start consumes until ctx is canceled and in-flight commands have finished.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.InfoContext(ctx, "starting submit consumer", logger.Field{
		Key:   "action",
		Value: "submit_consumer_start",
	})

	err := c.subscriber.Subscribe(ctx, v1.TopicSubmit, c.group, c.Handle)

	c.logger.InfoContext(ctx, "submit consumer stopped", logger.Field{
		Key:   "action",
		Value: "submit_consumer_stop",
	})
	return err
}

// Handle processes one delivery. Undecodable commands are acknowledged and
// dropped since no redelivery can fix them.
func (c *Consumer) Handle(ctx context.Context, msg bus.Message) error {
	ctx = util.WithRequestID(ctx, msg.ID)

	cmd, err := v1.SubmitCommandFromBytes(msg.Payload)
	if err != nil {
		c.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "action",
			Value: "unmarshal_submit_command",
		})
		return nil
	}
	if cmd.OrderID == "" {
		c.logger.WarnContext(ctx, "dropping submit command without order id", logger.Field{
			Key:   "action",
			Value: "handle_submit_command",
		})
		return nil
	}
	ctx = util.WithActorID(ctx, cmd.UserID)

	if err := c.executionUsecase.Execute(ctx, cmd); err != nil {
		if errors.IsCode(err, errors.OrderLockedError) {
			c.logger.DebugContext(ctx, "order locked by another worker",
				logger.Field{Key: "action", Value: "handle_submit_command"},
				logger.Field{Key: "orderId", Value: cmd.OrderID},
			)
			return err
		}

		c.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "handle_submit_command"},
			logger.Field{Key: "orderId", Value: cmd.OrderID},
			logger.Field{Key: "attempt", Value: msg.Attempt},
		)
		return err
	}

	return nil
}
