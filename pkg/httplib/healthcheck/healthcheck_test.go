package healthcheck

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Handler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	testCases := []struct {
		name   string
		checks map[string]Checker
		path   string
		code   int
		status string
	}{
		{
			name:   "no checks",
			path:   "/health",
			code:   http.StatusOK,
			status: "ok",
		},
		{
			name: "all checks pass",
			checks: map[string]Checker{
				"postgres": func(context.Context) error { return nil },
			},
			path:   "/health",
			code:   http.StatusOK,
			status: "ok",
		},
		{
			name: "failing check",
			checks: map[string]Checker{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return stdErrors.New("connection refused") },
			},
			path:   "/health",
			code:   http.StatusServiceUnavailable,
			status: "unavailable",
		},
		{
			name: "other paths pass through",
			path: "/orders",
			code: http.StatusTeapot,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(0, tc.checks).Handler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.code, rec.Code)
			if tc.status == "" {
				return
			}
			var report Report
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tc.status, report.Status)
			for name := range tc.checks {
				assert.Contains(t, report.Checks, name)
			}
		})
	}
}
