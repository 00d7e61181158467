package order

import (
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
)

// Order is a row of order_commands.
type Order struct {
	ID          string           `json:"orderId"`
	UserID      string           `json:"userId"`
	Symbol      string           `json:"symbol"`
	Side        v1.Side          `json:"side"`
	Type        v1.Type          `json:"type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Status      v1.Status        `json:"status"`
	FilledPrice *decimal.Decimal `json:"filledPrice,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ToSubmitCommand builds the command published for this order.
func (o *Order) ToSubmitCommand() *v1.SubmitCommand {
	return &v1.SubmitCommand{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Type:      o.Type,
		Quantity:  o.Quantity,
		Timestamp: o.CreatedAt,
	}
}

// ToStatusEvent builds the status event describing the stored outcome.
func (o *Order) ToStatusEvent() *v1.StatusEvent {
	return v1.NewStatusEvent(v1.StatusEventData{
		OrderID: o.ID,
		UserID:  o.UserID,
		Symbol:  o.Symbol,
		Status:  o.Status,
		Price:   o.FilledPrice,
		Reason:  o.Reason,
	})
}

// Outcome is the terminal result written once per order.
type Outcome struct {
	Status      v1.Status
	FilledPrice *decimal.Decimal
	Reason      string
}

// Event is a row of the append-only order_events log.
type Event struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"orderId"`
	Status          v1.Status       `json:"status"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	ExchangeStatus  string          `json:"exchangeStatus,omitempty"`
	ExchangeOrderID string          `json:"exchangeOrderId,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Filter represents the filter criteria for listing a user's orders.
type Filter struct {
	UserID string
	Symbol string
	Status v1.Status
	Limit  int
	Offset int
}

const (
	// DefaultListLimit applies when Filter.Limit is unset.
	DefaultListLimit = 50
	// MaxListLimit caps Filter.Limit.
	MaxListLimit = 500
)

// Detail is an order together with its execution events.
type Detail struct {
	*Order
	Events []*Event `json:"events"`
}
