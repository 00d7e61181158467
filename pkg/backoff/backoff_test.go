package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Next(t *testing.T) {
	b := Backoff{Min: 100 * time.Millisecond, Max: time.Second, Factor: 2}

	testCases := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "zero attempt clamps to first", attempt: 0, expected: 100 * time.Millisecond},
		{name: "first", attempt: 1, expected: 100 * time.Millisecond},
		{name: "second doubles", attempt: 2, expected: 200 * time.Millisecond},
		{name: "fourth", attempt: 4, expected: 800 * time.Millisecond},
		{name: "capped", attempt: 10, expected: time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, b.Next(tc.attempt))
		})
	}
}

func TestBackoff_NextWithJitterStaysInRange(t *testing.T) {
	b := Backoff{Min: 100 * time.Millisecond, Max: time.Second, Factor: 2, Jitter: 0.5}

	for i := 0; i < 100; i++ {
		d := b.Next(2)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 300*time.Millisecond)
	}
}

func TestBackoff_SleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Min: time.Hour, Max: time.Hour}.Sleep(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
