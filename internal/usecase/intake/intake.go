package intake

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	"github.com/Akhileshait/tradenet/internal/infrastructure/postgresql/order"
	"github.com/Akhileshait/tradenet/internal/metrics"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

type usecase struct {
	orderRepository order.OrderRepository
	publisher       bus.Publisher
	logger          logger.Interface

	newID func() string
	now   func() time.Time
}

// NewUsecase creates a new intake usecase.
func NewUsecase(orderRepository order.OrderRepository, publisher bus.Publisher, logger logger.Interface) *usecase {
	return &usecase{
		orderRepository: orderRepository,
		publisher:       publisher,
		logger:          logger,
		newID:           func() string { return ulid.Make().String() },
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates req, stores it as PENDING and publishes the submit
// command. When only the publish fails the result is still returned along
// with a DeliveryError.
func (u *usecase) Submit(ctx context.Context, req v1.SubmitRequest) (*v1.SubmitResult, error) {
	submission, err := req.Validate()
	if err != nil {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	now := u.now()
	o := &order.Order{
		ID:        u.newID(),
		UserID:    submission.UserID,
		Symbol:    submission.Symbol,
		Side:      submission.Side,
		Type:      submission.Type,
		Quantity:  submission.Quantity,
		Status:    v1.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.orderRepository.Create(ctx, o); err != nil {
		u.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "action",
			Value: "intake.Submit.Create",
		})
		metrics.Submissions.WithLabelValues("persistence_error").Inc()
		return nil, errors.Wrap(errors.PersistenceError, err, "")
	}

	result := &v1.SubmitResult{OrderID: o.ID, Status: o.Status}

	payload, err := o.ToSubmitCommand().ToBytes()
	if err == nil {
		err = u.publisher.Publish(ctx, v1.TopicSubmit, payload)
	}
	if err != nil {
		u.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "intake.Submit.Publish"},
			logger.Field{Key: "orderId", Value: o.ID},
		)
		metrics.Submissions.WithLabelValues("delivery_error").Inc()
		return result, errors.Wrap(errors.DeliveryError, err, "")
	}

	u.logger.InfoContext(ctx, "Order accepted",
		logger.Field{Key: "orderId", Value: o.ID},
		logger.Field{Key: "symbol", Value: o.Symbol},
	)
	metrics.Submissions.WithLabelValues("accepted").Inc()

	return result, nil
}

// GetOrder returns one of the user's orders with its execution events.
func (u *usecase) GetOrder(ctx context.Context, userID, orderID string) (*order.Detail, error) {
	o, err := u.orderRepository.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.PersistenceError, err, "")
	}
	if o == nil || o.UserID != userID {
		return nil, errors.New(errors.GeneralNotFoundError, "order not found", "orderId")
	}

	events, err := u.orderRepository.ListEvents(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.PersistenceError, err, "")
	}

	return &order.Detail{Order: o, Events: events}, nil
}

// ListOrders lists the orders matching filter. Filter.UserID is required.
func (u *usecase) ListOrders(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	if filter.UserID == "" {
		return nil, errors.New(errors.ValidationError, "user id is required", "userId")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.New(errors.ValidationError, "unknown status", "status")
	}
	if filter.Symbol != "" {
		symbol, err := v1.ParseSymbol(filter.Symbol)
		if err != nil {
			return nil, err
		}
		filter.Symbol = symbol
	}

	orders, err := u.orderRepository.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(errors.PersistenceError, err, "")
	}
	return orders, nil
}
