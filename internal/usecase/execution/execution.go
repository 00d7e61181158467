package execution

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	exchangev1 "github.com/Akhileshait/tradenet/internal/domain/exchange/v1"
	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	"github.com/Akhileshait/tradenet/internal/infrastructure/postgresql/credential"
	"github.com/Akhileshait/tradenet/internal/infrastructure/postgresql/order"
	"github.com/Akhileshait/tradenet/internal/infrastructure/redis/lock"
	"github.com/Akhileshait/tradenet/internal/metrics"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
)

const reasonNoCredentials = "no exchange credentials configured for user"

type usecase struct {
	orderRepository      order.OrderRepository
	credentialRepository credential.CredentialRepository
	exchange             exchangev1.Client
	locker               lock.OrderLocker
	publisher            bus.Publisher
	dbTx                 postgresql.Transaction
	logger               logger.Interface

	newID func() string
	now   func() time.Time
}

// NewUsecase creates a new execution usecase.
func NewUsecase(
	orderRepository order.OrderRepository,
	credentialRepository credential.CredentialRepository,
	exchange exchangev1.Client,
	locker lock.OrderLocker,
	publisher bus.Publisher,
	dbTx postgresql.Transaction,
	logger logger.Interface,
) *usecase {
	return &usecase{
		orderRepository:      orderRepository,
		credentialRepository: credentialRepository,
		exchange:             exchange,
		locker:               locker,
		publisher:            publisher,
		dbTx:                 dbTx,
		logger:               logger,
		newID:                func() string { return ulid.Make().String() },
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// Execute moves the order named by cmd to a terminal status and publishes the
// outcome. A returned error means the command should be delivered again; a
// redelivery never reaches the exchange once the outcome is stored.
func (u *usecase) Execute(ctx context.Context, cmd *v1.SubmitCommand) error {
	token, err := u.locker.Acquire(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	defer func() {
		if err := u.locker.Release(context.WithoutCancel(ctx), cmd.OrderID, token); err != nil {
			u.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "execution.Execute.Release"})
		}
	}()

	o, err := u.orderRepository.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return errors.Wrap(errors.PersistenceError, err, "")
	}
	if o == nil {
		u.logger.WarnContext(ctx, "Dropping command for unknown order",
			logger.Field{Key: "action", Value: "execution.Execute"},
			logger.Field{Key: "orderId", Value: cmd.OrderID},
		)
		return nil
	}
	if o.Status.IsTerminal() {
		u.logger.InfoContext(ctx, "Order already terminal, republishing outcome",
			logger.Field{Key: "orderId", Value: o.ID},
			logger.Field{Key: "status", Value: o.Status},
		)
		return u.publishStatus(ctx, o)
	}

	outcome, event, err := u.resolve(ctx, o)
	if err != nil {
		return err
	}

	stored, err := u.finalize(ctx, o, outcome, event)
	if err != nil {
		return err
	}

	return u.publishStatus(ctx, stored)
}

// resolve produces the terminal outcome of a pending order. Only store
// failures are returned as errors.
func (u *usecase) resolve(ctx context.Context, o *order.Order) (order.Outcome, *order.Event, error) {
	event := &order.Event{
		ID:       u.newID(),
		OrderID:  o.ID,
		Price:    decimal.Zero,
		Quantity: decimal.Zero,
	}

	cred, err := u.credentialRepository.GetByUserID(ctx, o.UserID)
	if err != nil {
		return order.Outcome{}, nil, errors.Wrap(errors.PersistenceError, err, "")
	}
	if cred == nil {
		credErr := errors.New(errors.CredentialError, reasonNoCredentials, "userId")
		u.logger.ErrorContext(ctx, credErr,
			logger.Field{Key: "action", Value: "execution.resolve"},
			logger.Field{Key: "orderId", Value: o.ID},
		)
		return u.outcome(event, v1.StatusRejected, nil, reasonNoCredentials), event, nil
	}

	start := time.Now()
	execution, err := u.exchange.PlaceOrder(ctx, exchangev1.OrderRequest{
		ClientOrderID: o.ID,
		Symbol:        o.Symbol,
		Side:          o.Side,
		Type:          o.Type,
		Quantity:      o.Quantity,
		Credentials: exchangev1.Credentials{
			APIKey:    cred.APIKey,
			APISecret: cred.APISecret,
		},
	})
	elapsed := time.Since(start).Seconds()

	if err == nil {
		metrics.ExchangeDurations.WithLabelValues("ok").Observe(elapsed)
		status := execution.OrderStatus()
		price := execution.FillPrice()
		event.Price = price
		event.Quantity = execution.ExecutedQty
		event.ExchangeStatus = execution.RawStatus()
		event.ExchangeOrderID = execution.ExchangeOrderID

		if status == v1.StatusFilled {
			return u.outcome(event, status, &price, ""), event, nil
		}
		return u.outcome(event, status, nil, "exchange status "+execution.RawStatus()), event, nil
	}

	u.logger.ErrorContext(ctx, err,
		logger.Field{Key: "action", Value: "execution.resolve.PlaceOrder"},
		logger.Field{Key: "orderId", Value: o.ID},
	)

	var rejection *exchangev1.RejectionError
	switch {
	case stdErrors.As(err, &rejection):
		metrics.ExchangeDurations.WithLabelValues("rejected").Observe(elapsed)
		return u.outcome(event, v1.StatusRejected, nil, rejection.Message), event, nil
	case errors.IsCode(err, errors.ExchangeTimeoutError):
		metrics.ExchangeDurations.WithLabelValues("timeout").Observe(elapsed)
		return u.outcome(event, v1.StatusError, nil, "exchange request timed out"), event, nil
	default:
		metrics.ExchangeDurations.WithLabelValues("error").Observe(elapsed)
		return u.outcome(event, v1.StatusError, nil, err.Error()), event, nil
	}
}

func (u *usecase) outcome(event *order.Event, status v1.Status, price *decimal.Decimal, reason string) order.Outcome {
	event.Status = status
	event.Reason = reason
	event.CreatedAt = u.now()
	return order.Outcome{Status: status, FilledPrice: price, Reason: reason}
}

// finalize writes the outcome and its event in one transaction and returns
// the order as stored. When another delivery already finalized the order the
// stored outcome wins and no event is appended.
func (u *usecase) finalize(ctx context.Context, o *order.Order, outcome order.Outcome, event *order.Event) (*order.Order, error) {
	var updated bool
	err := postgresql.WithTx(ctx, u.dbTx, func(txCtx context.Context) error {
		var err error
		updated, err = u.orderRepository.MarkTerminal(txCtx, o.ID, outcome)
		if err != nil || !updated {
			return err
		}
		return u.orderRepository.StoreEvent(txCtx, event)
	})
	if err != nil {
		u.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "execution.finalize"},
			logger.Field{Key: "orderId", Value: o.ID},
		)
		return nil, errors.Wrap(errors.PersistenceError, err, "")
	}

	if !updated {
		stored, err := u.orderRepository.GetByID(ctx, o.ID)
		if err != nil {
			return nil, errors.Wrap(errors.PersistenceError, err, "")
		}
		if stored == nil {
			return nil, errors.New(errors.PersistenceError, "order disappeared while executing", "orderId")
		}
		return stored, nil
	}

	metrics.Executions.WithLabelValues(string(outcome.Status)).Inc()
	u.logger.InfoContext(ctx, "Order finalized",
		logger.Field{Key: "orderId", Value: o.ID},
		logger.Field{Key: "status", Value: outcome.Status},
	)

	final := *o
	final.Status = outcome.Status
	final.FilledPrice = outcome.FilledPrice
	final.Reason = outcome.Reason
	final.UpdatedAt = event.CreatedAt
	return &final, nil
}

func (u *usecase) publishStatus(ctx context.Context, o *order.Order) error {
	payload, err := o.ToStatusEvent().ToBytes()
	if err != nil {
		return errors.Wrap(errors.DeliveryError, err, "")
	}
	if err := u.publisher.Publish(ctx, v1.TopicStatus, payload); err != nil {
		u.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "execution.publishStatus"},
			logger.Field{Key: "orderId", Value: o.ID},
		)
		return errors.Wrap(errors.DeliveryError, err, "")
	}
	return nil
}
