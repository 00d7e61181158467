package v1

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	orderv1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
)

func TestExecution_OrderStatus(t *testing.T) {
	testCases := []struct {
		status   string
		expected orderv1.Status
	}{
		{status: "", expected: orderv1.StatusFilled},
		{status: "FILLED", expected: orderv1.StatusFilled},
		{status: "NEW", expected: orderv1.StatusFilled},
		{status: "PARTIALLY_FILLED", expected: orderv1.StatusFilled},
		{status: "CANCELED", expected: orderv1.StatusRejected},
		{status: "REJECTED", expected: orderv1.StatusRejected},
		{status: "EXPIRED", expected: orderv1.StatusRejected},
		{status: "EXPIRED_IN_MATCH", expected: orderv1.StatusRejected},
	}

	for _, tc := range testCases {
		t.Run("status "+tc.status, func(t *testing.T) {
			e := &Execution{Status: tc.status}
			assert.Equal(t, tc.expected, e.OrderStatus())
		})
	}
}

func TestExecution_FillPrice(t *testing.T) {
	assert.True(t, decimal.Zero.Equal((&Execution{}).FillPrice()))

	e := &Execution{Fills: []Fill{
		{Price: decimal.NewFromInt(50000)},
		{Price: decimal.NewFromInt(50010)},
	}}
	assert.True(t, decimal.NewFromInt(50000).Equal(e.FillPrice()))
}

func TestExecution_RawStatus(t *testing.T) {
	assert.Equal(t, "FILLED", (&Execution{}).RawStatus())
	assert.Equal(t, "NEW", (&Execution{Status: "NEW"}).RawStatus())
}
