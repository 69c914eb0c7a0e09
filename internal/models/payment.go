package models

import "github.com/google/uuid"

// CreateOrderRequest is the tenant payload for starting an advance payment
type CreateOrderRequest struct {
	RoomID     string `json:"room_id" validate:"required,uuid"`
	PropertyID string `json:"property_id" validate:"required,uuid"`
}

// OrderHandle is returned to the client to open the gateway checkout.
// Notes carry enough context to rebuild the booking if the client loses state.
type OrderHandle struct {
	OrderID         string            `json:"order_id"`
	Receipt         string            `json:"receipt"`
	KeyID           string            `json:"key_id,omitempty"`
	AmountMinor     int64             `json:"amount"`
	Currency        string            `json:"currency"`
	TotalAmount     float64           `json:"total_amount"`
	AdvanceAmount   float64           `json:"advance_amount"`
	RemainingAmount float64           `json:"remaining_amount"`
	RoomID          uuid.UUID         `json:"room_id"`
	PropertyID      uuid.UUID         `json:"property_id"`
	Notes           map[string]string `json:"notes"`
	Mode            string            `json:"mode"`
}

// VerifyPaymentRequest is the gateway callback data relayed by the client
// together with the booking context it was paying for.
type VerifyPaymentRequest struct {
	OrderID    string `json:"razorpay_order_id" validate:"required"`
	PaymentID  string `json:"razorpay_payment_id" validate:"required"`
	Signature  string `json:"razorpay_signature" validate:"required"`
	RoomID     string `json:"room_id" validate:"required,uuid"`
	PropertyID string `json:"property_id" validate:"required,uuid"`
}
