package services

import (
	"fmt"
)

// Conflict reasons returned when a room cannot take a booking
const (
	ReasonRoomInactive        = "room_inactive"
	ReasonRoomMaintenance     = "room_maintenance"
	ReasonRoomUnavailable     = "room_unavailable"
	ReasonRoomNotApproved     = "room_not_approved"
	ReasonRoomAlreadyReserved = "room_already_reserved"
	ReasonPropertyApproved    = "property_approved"
	ReasonBookingState        = "booking_state"
	ReasonPaymentReused       = "payment_reused"
	ReasonOrderMismatch       = "order_mismatch"
)

// ValidationError reports malformed or missing input. The caller must fix it and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// NotFoundError reports an id that does not resolve
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UnauthorizedError reports a caller acting on a resource it does not own
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// ConflictError reports a state that forbids the operation, e.g. a room that is not bookable
type ConflictError struct {
	Reason  string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// SignatureMismatchError is terminal for a payment attempt; a fresh order is needed
type SignatureMismatchError struct {
	OrderID string
}

func (e *SignatureMismatchError) Error() string {
	return "payment signature verification failed for order " + e.OrderID
}

// TransactionAbortError reports a storage failure during an atomic write.
// Nothing was persisted and the whole request may be retried.
type TransactionAbortError struct {
	Op  string
	Err error
}

func (e *TransactionAbortError) Error() string {
	return fmt.Sprintf("%s aborted: %v", e.Op, e.Err)
}

func (e *TransactionAbortError) Unwrap() error {
	return e.Err
}

// UpstreamUnavailableError reports an unreachable dependency (identity service, gateway, broker)
type UpstreamUnavailableError struct {
	Service string
	Err     error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

func notFound(resource string, id fmt.Stringer) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

func conflict(reason, message string) error {
	return &ConflictError{Reason: reason, Message: message}
}
