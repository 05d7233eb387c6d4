package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCheck(context.Context) error { return nil }

func TestOpsHandler_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newOpsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestOpsHandler_Ready(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]readinessCheck
		code   int
		status string
	}{
		{
			name:   "all dependencies up",
			checks: map[string]readinessCheck{"postgres": okCheck, "redis": okCheck},
			code:   http.StatusOK,
			status: "ready",
		},
		{
			name: "redis down",
			checks: map[string]readinessCheck{
				"postgres": okCheck,
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			code:   http.StatusServiceUnavailable,
			status: "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newOpsHandler(tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.code, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "ok", body.Checks["postgres"])
		})
	}
}

func TestOpsHandler_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newOpsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
