package v1

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Akhileshait/tradenet/pkg/errors"
)

// Side is the direction of an order.
type Side string

const (
	// SideBuy buys the base asset.
	SideBuy Side = "BUY"
	// SideSell sells the base asset.
	SideSell Side = "SELL"
)

// Type is the execution style of an order.
type Type string

const (
	// TypeMarket executes at the best available price.
	TypeMarket Type = "MARKET"
	// TypeLimit rests at a limit price.
	TypeLimit Type = "LIMIT"
	// TypeStopLossLimit becomes a limit order once a stop price trades.
	TypeStopLossLimit Type = "STOP_LOSS_LIMIT"
)

// Status is the lifecycle state of an order command.
type Status string

const (
	// StatusPending is written by the gateway before the command is published.
	StatusPending Status = "PENDING"
	// StatusFilled means the exchange executed the order.
	StatusFilled Status = "FILLED"
	// StatusRejected means the exchange or credential lookup refused the order.
	StatusRejected Status = "REJECTED"
	// StatusError means the outcome could not be determined.
	StatusError Status = "ERROR"
)

// IsTerminal reports whether s has no outgoing transition.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusRejected, StatusError:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s.IsTerminal()
}

const maxSymbolLength = 20

// SubmitRequest is an order submission as received from a client.
type SubmitRequest struct {
	UserID   string
	Symbol   string
	Side     string
	Type     string
	Quantity string
}

// Submission is a validated, canonical SubmitRequest.
type Submission struct {
	UserID   string
	Symbol   string
	Side     Side
	Type     Type
	Quantity decimal.Decimal
}

// Validate normalizes the request, failing with a ValidationError naming the
// first offending field.
func (r SubmitRequest) Validate() (*Submission, error) {
	userID := strings.TrimSpace(r.UserID)
	if userID == "" {
		return nil, errors.New(errors.ValidationError, "user id is required", "userId")
	}

	symbol, err := ParseSymbol(r.Symbol)
	if err != nil {
		return nil, err
	}

	side, err := ParseSide(r.Side)
	if err != nil {
		return nil, err
	}

	orderType, err := ParseType(r.Type)
	if err != nil {
		return nil, err
	}

	quantity, err := ParseQuantity(r.Quantity)
	if err != nil {
		return nil, err
	}

	return &Submission{
		UserID:   userID,
		Symbol:   symbol,
		Side:     side,
		Type:     orderType,
		Quantity: quantity,
	}, nil
}

// ParseSymbol upper-cases raw and requires it to be alphanumeric.
func ParseSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", errors.New(errors.ValidationError, "symbol is required", "symbol")
	}
	if len(symbol) > maxSymbolLength {
		return "", errors.New(errors.ValidationError, "symbol is too long", "symbol")
	}
	for _, c := range symbol {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", errors.New(errors.ValidationError, "symbol must be alphanumeric", "symbol")
		}
	}
	return symbol, nil
}

// ParseSide accepts BUY or SELL in any case.
func ParseSide(raw string) (Side, error) {
	switch side := Side(strings.ToUpper(strings.TrimSpace(raw))); side {
	case SideBuy, SideSell:
		return side, nil
	default:
		return "", errors.New(errors.ValidationError, "side must be BUY or SELL", "side")
	}
}

// ParseType accepts MARKET, LIMIT or STOP_LOSS_LIMIT in any case.
func ParseType(raw string) (Type, error) {
	switch orderType := Type(strings.ToUpper(strings.TrimSpace(raw))); orderType {
	case TypeMarket, TypeLimit, TypeStopLossLimit:
		return orderType, nil
	default:
		return "", errors.New(errors.ValidationError, "type must be MARKET, LIMIT or STOP_LOSS_LIMIT", "type")
	}
}

// Quantities are stored as NUMERIC(36,18).
const (
	quantityScale         = 18
	quantityIntegerDigits = 18
)

var quantityLimit = decimal.New(1, quantityIntegerDigits)

// ParseQuantity requires a positive decimal that fits the stored precision.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errors.New(errors.ValidationError, "quantity is required", "quantity")
	}

	quantity, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New(errors.ValidationError, "quantity must be a decimal number", "quantity")
	}
	if !quantity.IsPositive() {
		return decimal.Zero, errors.New(errors.ValidationError, "quantity must be greater than zero", "quantity")
	}
	if !quantity.Equal(quantity.Truncate(quantityScale)) {
		return decimal.Zero, errors.New(errors.ValidationError, "quantity must have at most 18 decimal places", "quantity")
	}
	if quantity.GreaterThanOrEqual(quantityLimit) {
		return decimal.Zero, errors.New(errors.ValidationError, "quantity must have at most 18 integer digits", "quantity")
	}
	return quantity, nil
}

// SubmitResult is returned to the client once an order has been accepted.
type SubmitResult struct {
	OrderID string `json:"orderId"`
	Status  Status `json:"status"`
}
