package order

import (
	"context"

	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	orderInfra "github.com/Akhileshait/tradenet/internal/infrastructure/postgresql/order"
)

//go:generate mockgen -source=interface.go -destination=mock/usecase_mock.go -package=mock

// IntakeUsecase accepts orders from clients and serves their history.
type IntakeUsecase interface {
	Submit(ctx context.Context, req v1.SubmitRequest) (*v1.SubmitResult, error)
	GetOrder(ctx context.Context, userID, orderID string) (*orderInfra.Detail, error)
	ListOrders(ctx context.Context, filter orderInfra.Filter) ([]*orderInfra.Order, error)
}

// ExecutionUsecase drives a submitted order to its terminal status.
type ExecutionUsecase interface {
	Execute(ctx context.Context, cmd *v1.SubmitCommand) error
}

// RouterUsecase forwards encoded status events to the owning user's
// connection. Route reports whether the payload was handed to a connection.
type RouterUsecase interface {
	Route(ctx context.Context, payload []byte) bool
}
