package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLevel(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Level
	}{
		{name: "debug", input: "debug", expected: DebugLevel},
		{name: "upper case", input: "WARN", expected: WarnLevel},
		{name: "error", input: "error", expected: ErrorLevel},
		{name: "unknown falls back to info", input: "verbose", expected: InfoLevel},
		{name: "empty falls back to info", input: "", expected: InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FromLevel(tc.input))
		})
	}
}

func TestAppendContextFields(t *testing.T) {
	ctx := util.WithRequestID(context.Background(), "req-1")

	fields := appendContextFields(ctx, []Field{NewField("action", "submit")})
	assert.Equal(t, []Field{
		NewField("action", "submit"),
		NewField("request_id", "req-1"),
	}, fields)

	ctx = util.WithActorID(ctx, "u1")
	fields = appendContextFields(ctx, nil)
	assert.Equal(t, []Field{
		NewField("request_id", "req-1"),
		NewField("user_id", "u1"),
	}, fields)
}

func TestLogger_WritesContextFields(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")

	log, err := NewLogger(WithOutputPaths([]string{out}), WithLoggingLevel(DebugLevel))
	require.NoError(t, err)

	ctx := util.WithActorID(util.WithRequestID(context.Background(), "req-9"), "u7")
	log.InfoContext(ctx, "order submitted", NewField("order_id", "01HX"))
	log.ErrorContext(ctx, errors.New(errors.PersistenceError, "insert failed", "order"))
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Contains(t, string(content), `"message":"order submitted"`)
	assert.Contains(t, string(content), `"request_id":"req-9"`)
	assert.Contains(t, string(content), `"user_id":"u7"`)
	assert.Contains(t, string(content), `"order_id":"01HX"`)
	assert.Contains(t, string(content), `"message":"insert failed"`)
}

func TestLogger_ErrorWritesCodeAndStack(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")

	log, err := NewLogger(WithOutputPaths([]string{out}))
	require.NoError(t, err)

	log.Debug("dropped below info")
	log.WithFields(NewField("service", "execution")).Error(errors.New(errors.ValidationError, "bad side", "side"))
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.NotContains(t, string(content), "dropped below info")
	assert.Contains(t, string(content), `"service":"execution"`)
	assert.Contains(t, string(content), `"code":"validation_error"`)
	assert.Contains(t, string(content), `"stacktrace":"`)
}
