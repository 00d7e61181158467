package v1

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	orderv1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
)

// Credentials authenticate requests on behalf of one user.
type Credentials struct {
	APIKey    string
	APISecret string
}

// OrderRequest is a new order sent to the exchange. ClientOrderID lets the
// venue reject duplicates of an order that was already accepted.
type OrderRequest struct {
	ClientOrderID string
	Symbol        string
	Side          orderv1.Side
	Type          orderv1.Type
	Quantity      decimal.Decimal
	Credentials   Credentials
}

// Fill is one trade that executed part of an order.
type Fill struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Execution is the exchange's acknowledgement of an order.
type Execution struct {
	ExchangeOrderID string
	Status          string
	ExecutedQty     decimal.Decimal
	Fills           []Fill
}

// FillPrice is the price of the first fill, or zero when nothing filled.
func (e *Execution) FillPrice() decimal.Decimal {
	if len(e.Fills) == 0 {
		return decimal.Zero
	}
	return e.Fills[0].Price
}

// OrderStatus maps the venue status to the order lifecycle. Refused or
// expired orders are REJECTED; any other status, including an empty one,
// counts as FILLED.
func (e *Execution) OrderStatus() orderv1.Status {
	switch e.Status {
	case "REJECTED", "CANCELED", "EXPIRED", "EXPIRED_IN_MATCH":
		return orderv1.StatusRejected
	default:
		return orderv1.StatusFilled
	}
}

// RawStatus returns the venue status, defaulting to FILLED when omitted.
func (e *Execution) RawStatus() string {
	if e.Status == "" {
		return string(orderv1.StatusFilled)
	}
	return e.Status
}

// ErrOrderNotFound is returned when the venue holds no order for a client
// order id.
var ErrOrderNotFound = errors.New("order not found on exchange")

// RejectionError is a definitive refusal by the venue. Retrying the same
// request cannot succeed.
type RejectionError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("exchange rejected order (http %d, code %d): %s", e.HTTPStatus, e.Code, e.Message)
}
