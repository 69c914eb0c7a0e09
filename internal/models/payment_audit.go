package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventOrderCreated       PaymentEventType = "order_created"
	PaymentEventOrderFailed        PaymentEventType = "order_failed"
	PaymentEventSignatureVerified  PaymentEventType = "signature_verified"
	PaymentEventSignatureMismatch  PaymentEventType = "signature_mismatch"
	PaymentEventBookingCreated     PaymentEventType = "booking_created"
	PaymentEventBookingCreateError PaymentEventType = "booking_create_failed"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceBackend    PaymentEventSource = "backend"
	PaymentSourceGatewayAPI PaymentEventSource = "gateway_api"
	PaymentSourceClient     PaymentEventSource = "client"
)

// PaymentAudit represents an immutable audit log entry for payment events
type PaymentAudit struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	BookingID *uuid.UUID `json:"booking_id,omitempty" db:"booking_id"`
	RoomID    *uuid.UUID `json:"room_id,omitempty" db:"room_id"`

	// Gateway identifiers
	OrderID   *string `json:"order_id,omitempty" db:"order_id"`
	PaymentID *string `json:"payment_id,omitempty" db:"payment_id"`

	// Event info
	EventType   PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource PaymentEventSource `json:"event_source" db:"event_source"`

	// Amounts in minor units
	AmountMinor *int64  `json:"amount_minor,omitempty" db:"amount_minor"`
	Currency    *string `json:"currency,omitempty" db:"currency"`

	// Raw payloads
	Payload JSONB `json:"payload,omitempty" db:"payload"`

	// Error tracking
	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	ProcessingTimeMs *int      `json:"processing_time_ms,omitempty" db:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// NewPaymentAudit creates a new payment audit entry with required fields
func NewPaymentAudit(eventType PaymentEventType, source PaymentEventSource) *PaymentAudit {
	return &PaymentAudit{
		ID:          uuid.New(),
		EventType:   eventType,
		EventSource: source,
		CreatedAt:   time.Now(),
	}
}

// SetUser sets the paying user
func (pa *PaymentAudit) SetUser(userID uuid.UUID) *PaymentAudit {
	pa.UserID = &userID
	return pa
}

// SetBooking sets the booking created from the payment
func (pa *PaymentAudit) SetBooking(bookingID uuid.UUID) *PaymentAudit {
	pa.BookingID = &bookingID
	return pa
}

// SetRoom sets the room being paid for
func (pa *PaymentAudit) SetRoom(roomID uuid.UUID) *PaymentAudit {
	pa.RoomID = &roomID
	return pa
}

// SetGatewayIDs sets the gateway order and payment ids
func (pa *PaymentAudit) SetGatewayIDs(orderID, paymentID string) *PaymentAudit {
	if orderID != "" {
		pa.OrderID = &orderID
	}
	if paymentID != "" {
		pa.PaymentID = &paymentID
	}
	return pa
}

// SetAmount sets the charged amount in minor units
func (pa *PaymentAudit) SetAmount(amountMinor int64, currency string) *PaymentAudit {
	pa.AmountMinor = &amountMinor
	pa.Currency = &currency
	return pa
}

// SetPayload stores a structured payload
func (pa *PaymentAudit) SetPayload(payload map[string]interface{}) *PaymentAudit {
	pa.Payload = JSONB(payload)
	return pa
}

// SetError sets error information
func (pa *PaymentAudit) SetError(err error) *PaymentAudit {
	if err != nil {
		msg := err.Error()
		pa.ErrorMessage = &msg
	}
	return pa
}

// SetProcessingTime calculates and sets processing time
func (pa *PaymentAudit) SetProcessingTime(startTime time.Time) *PaymentAudit {
	durationMs := int(time.Since(startTime).Milliseconds())
	pa.ProcessingTimeMs = &durationMs
	return pa
}
