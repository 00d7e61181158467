package binance

import (
	"strconv"

	"github.com/shopspring/decimal"

	exchangev1 "github.com/Akhileshait/tradenet/internal/domain/exchange/v1"
)

type orderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Status        string `json:"status"`
	ExecutedQty   string `json:"executedQty"`
	QuoteQty      string `json:"cummulativeQuoteQty"`
	Fills         []struct {
		Price string `json:"price"`
		Qty   string `json:"qty"`
	} `json:"fills"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (r *orderResponse) toExecution() *exchangev1.Execution {
	execution := &exchangev1.Execution{
		Status:      r.Status,
		ExecutedQty: parseDecimal(r.ExecutedQty),
	}
	if r.OrderID != 0 {
		execution.ExchangeOrderID = strconv.FormatInt(r.OrderID, 10)
	}
	for _, f := range r.Fills {
		execution.Fills = append(execution.Fills, exchangev1.Fill{
			Price:    parseDecimal(f.Price),
			Quantity: parseDecimal(f.Qty),
		})
	}
	// Order queries carry no fills; the average price stands in for them.
	if len(execution.Fills) == 0 && execution.ExecutedQty.IsPositive() {
		if quote := parseDecimal(r.QuoteQty); quote.IsPositive() {
			execution.Fills = append(execution.Fills, exchangev1.Fill{
				Price:    quote.Div(execution.ExecutedQty),
				Quantity: execution.ExecutedQty,
			})
		}
	}
	return execution
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
