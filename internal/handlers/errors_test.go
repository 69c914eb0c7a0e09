package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/middleware"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// withUser stands in for AuthMiddleware
func withUser(userID uuid.UUID, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{UserID: userID, Roles: roles})
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{"validation", &services.ValidationError{Field: "rent", Message: "must be positive"}, http.StatusBadRequest, "validation_error", ""},
		{"not found", &services.NotFoundError{Resource: "room", ID: uuid.New().String()}, http.StatusNotFound, "not_found", ""},
		{"unauthorized", &services.UnauthorizedError{Message: "not yours"}, http.StatusForbidden, "forbidden", ""},
		{"conflict", &services.ConflictError{Reason: services.ReasonRoomAlreadyReserved, Message: "taken"}, http.StatusConflict, "conflict", services.ReasonRoomAlreadyReserved},
		{"signature", &services.SignatureMismatchError{OrderID: "order_1"}, http.StatusPaymentRequired, "signature_mismatch", ""},
		{"abort", &services.TransactionAbortError{Op: "approve booking", Err: errors.New("boom")}, http.StatusInternalServerError, "transaction_aborted", ""},
		{"upstream", &services.UpstreamUnavailableError{Service: "payment gateway", Err: errors.New("timeout")}, http.StatusServiceUnavailable, "upstream_unavailable", ""},
		{"wrapped conflict", errors.Join(errors.New("ctx"), &services.ConflictError{Reason: "booking_state"}), http.StatusConflict, "conflict", "booking_state"},
		{"unknown", errors.New("database is on fire"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) { respondError(c, testLogger(), tt.err) })

			w := doJSON(t, router, http.MethodGet, "/x", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestRespondError_InternalDetailsHidden(t *testing.T) {
	router := gin.New()
	router.GET("/x", func(c *gin.Context) {
		respondError(c, testLogger(), errors.New("pq: password authentication failed"))
	})

	w := doJSON(t, router, http.MethodGet, "/x", nil)

	assert.NotContains(t, w.Body.String(), "password")
}

func TestCurrentUser_Missing(t *testing.T) {
	router := gin.New()
	router.GET("/me", func(c *gin.Context) {
		if _, ok := currentUser(c); ok {
			c.Status(http.StatusOK)
		}
	})

	w := doJSON(t, router, http.MethodGet, "/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeError(t, w).Error)
}

func TestPathID(t *testing.T) {
	router := gin.New()
	router.GET("/rooms/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		w := doJSON(t, router, http.MethodGet, "/rooms/"+id.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
	})

	t.Run("invalid", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/rooms/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decodeError(t, w).Error)
	})
}

func TestBindJSON_Malformed(t *testing.T) {
	router := gin.New()
	router.POST("/x", func(c *gin.Context) {
		var dst struct {
			Name string `json:"name"`
		}
		if bindJSON(c, &dst) {
			c.Status(http.StatusOK)
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
}
