package v1

import "context"

//go:generate mockgen -source=interface.go -destination=mock/client_mock.go -package=mock

// Client places orders on an exchange. When the venue already holds an order
// with the same ClientOrderID, PlaceOrder returns that order instead of a
// refusal. Errors are a *RejectionError, an ExchangeTimeoutError or an
// ExchangeError.
type Client interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (*Execution, error)
}
