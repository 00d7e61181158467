package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "plain error",
			err:      stdErrors.New("boom"),
			expected: "",
		},
		{
			name:     "details",
			err:      NewErrorDetails("bad side", string(ValidationError), "side"),
			expected: ValidationError,
		},
		{
			name:     "traced details",
			err:      New(PersistenceError, "insert failed", "order"),
			expected: PersistenceError,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("submit: %w", New(DeliveryError, "publish failed", "bus")),
			expected: DeliveryError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CodeOf(tc.err))
		})
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(ExchangeTimeoutError, context.DeadlineExceeded, "exchange")

	assert.True(t, IsCode(err, ExchangeTimeoutError))
	assert.True(t, stdErrors.Is(err, context.DeadlineExceeded))
	assert.NotNil(t, err.StackTrace())
	assert.Equal(t, context.DeadlineExceeded.Error(), err.Error())
}

func TestIsCode(t *testing.T) {
	assert.False(t, IsCode(nil, ValidationError))
	assert.False(t, IsCode(New(ValidationError, "x", ""), PersistenceError))
	assert.True(t, IsCode(New(ValidationError, "x", ""), ValidationError))
}

func TestTracerFromError_ReusesStack(t *testing.T) {
	first := TracerFromError(stdErrors.New("connection reset"))
	require.NotNil(t, first.StackTrace())

	again := TracerFromError(fmt.Errorf("store: %w", first))
	assert.Equal(t, "store: connection reset", again.Error())
	assert.Equal(t, first.StackTrace(), again.StackTrace())
	assert.True(t, stdErrors.Is(again, first))
}
