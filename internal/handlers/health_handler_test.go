package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		required   map[string]HealthCheck
		optional   map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{
			name:       "all healthy",
			required:   map[string]HealthCheck{"database": healthy},
			optional:   map[string]HealthCheck{"redis": healthy},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "optional down",
			required:   map[string]HealthCheck{"database": healthy},
			optional:   map[string]HealthCheck{"redis": failing},
			wantStatus: http.StatusOK,
			wantState:  "degraded",
		},
		{
			name:       "database down",
			required:   map[string]HealthCheck{"database": failing},
			optional:   map[string]HealthCheck{"redis": failing},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", NewHealthHandler("test", tt.required, tt.optional).Health)

			w := doJSON(t, router, http.MethodGet, "/health", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				Status     string            `json:"status"`
				Components map[string]string `json:"components"`
				Version    string            `json:"version"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "test", body.Version)
			assert.Contains(t, body.Components, "database")
		})
	}
}
