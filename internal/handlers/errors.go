package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/middleware"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Anything unrecognised is logged and answered with a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validationErr   *services.ValidationError
		notFoundErr     *services.NotFoundError
		unauthorizedErr *services.UnauthorizedError
		conflictErr     *services.ConflictError
		signatureErr    *services.SignatureMismatchError
		abortErr        *services.TransactionAbortError
		upstreamErr     *services.UpstreamUnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: notFoundErr.Error()})
	case errors.As(err, &unauthorizedErr):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: unauthorizedErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: conflictErr.Message, Code: conflictErr.Reason})
	case errors.As(err, &signatureErr):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{
			Error:   "signature_mismatch",
			Message: "Payment could not be verified. Please start a new payment.",
		})
	case errors.As(err, &abortErr):
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Transaction aborted")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "transaction_aborted",
			Message: "Nothing was saved. Please retry the request.",
		})
	case errors.As(err, &upstreamErr):
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Upstream unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "upstream_unavailable",
			Message: upstreamErr.Service + " is unavailable, please try again later",
		})
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
		})
	}
}

// currentUser returns the authenticated user or writes a 401
func currentUser(c *gin.Context) (middleware.UserContext, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return middleware.UserContext{}, false
	}
	return userCtx, true
}

// pathID parses a UUID path parameter or writes a 400
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid " + name + ": must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body or writes a 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}
