package order

import "context"

//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock

// OrderRepository is the repository for order commands and their execution events.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]*Order, error)
	ListEvents(ctx context.Context, orderID string) ([]*Event, error)
	MarkTerminal(ctx context.Context, id string, outcome Outcome) (bool, error)
	StoreEvent(ctx context.Context, event *Event) error
}
