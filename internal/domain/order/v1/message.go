package v1

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

const (
	// TopicSubmit carries SubmitCommand from the gateway to the execution worker.
	TopicSubmit = "order.submit"
	// TopicStatus carries StatusEvent from the execution worker to the event router.
	TopicStatus = "order.status"

	// EventOrderUpdate is the only StatusEvent kind.
	EventOrderUpdate = "ORDER_UPDATE"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	// Quantities and prices travel as JSON numbers; both numbers and strings decode.
	decimal.MarshalJSONWithoutQuotes = true
}

// SubmitCommand asks the execution worker to execute an order. The order
// status is never carried; the worker re-reads it from the store.
type SubmitCommand struct {
	OrderID   string          `json:"orderId"`
	UserID    string          `json:"userId"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Type      Type            `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Timestamp time.Time       `json:"timestamp"`
}

// ToBytes encodes the command.
func (c *SubmitCommand) ToBytes() ([]byte, error) {
	return json.Marshal(c)
}

// SubmitCommandFromBytes decodes a command, ignoring unknown fields.
func SubmitCommandFromBytes(data []byte) (*SubmitCommand, error) {
	cmd := &SubmitCommand{}
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// StatusEvent reports the terminal outcome of an order to its owner.
type StatusEvent struct {
	Type string          `json:"type"`
	Data StatusEventData `json:"data"`
}

// StatusEventData is the payload of a StatusEvent. UserID is the routing key.
type StatusEventData struct {
	OrderID string           `json:"orderId"`
	UserID  string           `json:"userId"`
	Symbol  string           `json:"symbol"`
	Status  Status           `json:"status"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Reason  string           `json:"reason,omitempty"`
}

// NewStatusEvent builds an ORDER_UPDATE event.
func NewStatusEvent(data StatusEventData) *StatusEvent {
	return &StatusEvent{Type: EventOrderUpdate, Data: data}
}

// ToBytes encodes the event.
func (e *StatusEvent) ToBytes() ([]byte, error) {
	return json.Marshal(e)
}

// StatusEventFromBytes decodes an event, ignoring unknown fields.
func StatusEventFromBytes(data []byte) (*StatusEvent, error) {
	event := &StatusEvent{}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, err
	}
	return event, nil
}
