package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// BOOKING STATUSES (matches DB ENUMs)
// ============================================================================

// BookingStatus represents the lifecycle state of a booking
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	BookingPaymentPending  BookingStatus = "payment_pending"  // Created without payment
	BookingPendingApproval BookingStatus = "pending_approval" // Advance paid, waiting for owner
	BookingConfirmed       BookingStatus = "confirmed"        // Owner approved, tenant created
	BookingRejected        BookingStatus = "rejected"         // Owner rejected
	BookingCancelled       BookingStatus = "cancelled"        // Only used in events, cancelled rows are deleted
)

// LiveBookingStatuses are the statuses that count as an active hold on a room
var LiveBookingStatuses = []BookingStatus{
	BookingPendingApproval,
	BookingConfirmed,
	BookingPaymentPending,
}

// CanCancel reports whether a booking in this status may be cancelled and deleted
func (s BookingStatus) CanCancel() bool {
	return s == BookingPaymentPending || s == BookingPendingApproval
}

// PaymentStatus represents the payment state within a booking
// Matches PostgreSQL ENUM: payment_status
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// BookingInitialState tags which entry point produced a booking
type BookingInitialState string

const (
	InitialUnpaid BookingInitialState = "unpaid" // plain create, starts at payment_pending
	InitialPaid   BookingInitialState = "paid"   // payment-verified create, starts at pending_approval
)

// ============================================================================
// SNAPSHOTS (JSONB)
// ============================================================================

// UserSnapshot is a frozen copy of a user's public profile at booking time
type UserSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Value implements the driver.Valuer interface
func (s UserSnapshot) Value() (driver.Value, error) { return jsonValue(s) }

// Scan implements the sql.Scanner interface
func (s *UserSnapshot) Scan(src interface{}) error { return jsonScan(src, s) }

// PropertySnapshot is a frozen copy of property data at booking time
type PropertySnapshot struct {
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	SecurityDeposit float64 `json:"security_deposit"`
}

// Value implements the driver.Valuer interface
func (s PropertySnapshot) Value() (driver.Value, error) { return jsonValue(s) }

// Scan implements the sql.Scanner interface
func (s *PropertySnapshot) Scan(src interface{}) error { return jsonScan(src, s) }

// RoomSnapshot is a frozen copy of room data at booking time
type RoomSnapshot struct {
	RoomType  string  `json:"room_type"`
	BedType   string  `json:"bed_type"`
	RoomSize  float64 `json:"room_size"`
	Occupancy int     `json:"occupancy"`
	Rent      float64 `json:"rent"`
}

// Value implements the driver.Valuer interface
func (s RoomSnapshot) Value() (driver.Value, error) { return jsonValue(s) }

// Scan implements the sql.Scanner interface
func (s *RoomSnapshot) Scan(src interface{}) error { return jsonScan(src, s) }

func jsonValue(v interface{}) (driver.Value, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

func jsonScan(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported snapshot type %T", src)
	}
}

// NewPropertySnapshot freezes the fields of a property a booking needs
func NewPropertySnapshot(p *Property) PropertySnapshot {
	snap := PropertySnapshot{
		Address:         p.Address,
		SecurityDeposit: p.SecurityDeposit,
	}
	if p.Name != nil {
		snap.Name = *p.Name
	}
	if p.City != nil {
		snap.City = *p.City
	}
	return snap
}

// NewRoomSnapshot freezes the fields of a room a booking needs
func NewRoomSnapshot(r *Room) RoomSnapshot {
	return RoomSnapshot{
		RoomType:  r.RoomType,
		BedType:   r.BedType,
		RoomSize:  r.RoomSize,
		Occupancy: r.Occupancy,
		Rent:      r.Rent,
	}
}

// ============================================================================
// PAYMENT SUB-RECORD
// ============================================================================

// BookingPayment is the payment sub-record of a booking.
// Immutable once PaymentStatus is completed.
type BookingPayment struct {
	MonthlyRent      float64       `json:"monthly_rent" db:"monthly_rent"`
	SecurityDeposit  float64       `json:"security_deposit" db:"security_deposit"`
	TotalAmount      float64       `json:"total_amount" db:"total_amount"`
	AdvanceAmount    float64       `json:"advance_amount" db:"advance_amount"`
	RemainingAmount  float64       `json:"remaining_amount" db:"remaining_amount"`
	Currency         string        `json:"currency" db:"currency"`
	GatewayOrderID   *string       `json:"gateway_order_id,omitempty" db:"gateway_order_id"`
	GatewayPaymentID *string       `json:"gateway_payment_id,omitempty" db:"gateway_payment_id"`
	GatewaySignature *string       `json:"gateway_signature,omitempty" db:"gateway_signature"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	PaidAt           *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
}

// AdvanceMinorUnits returns the recorded advance in the gateway's minor currency unit
func (p BookingPayment) AdvanceMinorUnits() int64 {
	return decimal.NewFromFloat(p.AdvanceAmount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// AmountSplit is the result of applying the advance-payment policy to a booking total
type AmountSplit struct {
	MonthlyRent     decimal.Decimal
	SecurityDeposit decimal.Decimal
	Total           decimal.Decimal
	Advance         decimal.Decimal
	Remaining       decimal.Decimal
}

// SplitAmounts computes total = rent + deposit and the advance/remaining split
// for the given advance percentage. The advance is rounded to two decimals.
func SplitAmounts(rent, securityDeposit float64, advancePercent int64) AmountSplit {
	r := decimal.NewFromFloat(rent)
	d := decimal.NewFromFloat(securityDeposit)
	total := r.Add(d)
	advance := total.Mul(decimal.NewFromInt(advancePercent)).Div(decimal.NewFromInt(100)).Round(2)
	return AmountSplit{
		MonthlyRent:     r,
		SecurityDeposit: d,
		Total:           total,
		Advance:         advance,
		Remaining:       total.Sub(advance),
	}
}

// AdvanceMinorUnits returns the advance expressed in the gateway's minor currency unit
func (s AmountSplit) AdvanceMinorUnits() int64 {
	return s.Advance.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ============================================================================
// BOOKING
// ============================================================================

// Booking represents a tenant's reservation of a room
type Booking struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	OwnerID    uuid.UUID `json:"owner_id" db:"owner_id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	RoomID     uuid.UUID `json:"room_id" db:"room_id"`

	Status          BookingStatus       `json:"status" db:"status"`
	InitialState    BookingInitialState `json:"initial_state" db:"initial_state"`
	RejectionReason *string             `json:"rejection_reason,omitempty" db:"rejection_reason"`

	BookingPayment `json:"payment"`

	// Snapshots taken at booking time
	UserSnapshot     UserSnapshot     `json:"user_snapshot" db:"user_snapshot"`
	OwnerSnapshot    UserSnapshot     `json:"owner_snapshot" db:"owner_snapshot"`
	PropertySnapshot PropertySnapshot `json:"property_snapshot" db:"property_snapshot"`
	RoomSnapshot     RoomSnapshot     `json:"room_snapshot" db:"room_snapshot"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// BookingParams holds what both booking constructors need
type BookingParams struct {
	UserID        uuid.UUID
	Property      *Property
	Room          *Room
	UserSnapshot  UserSnapshot
	OwnerSnapshot UserSnapshot
	Split         AmountSplit
	Currency      string
}

// PaymentReceipt carries the gateway identifiers of a verified payment
type PaymentReceipt struct {
	OrderID   string
	PaymentID string
	Signature string
}

func newBooking(p BookingParams) *Booking {
	now := time.Now()
	return &Booking{
		ID:         uuid.New(),
		UserID:     p.UserID,
		OwnerID:    p.Property.OwnerID,
		PropertyID: p.Property.ID,
		RoomID:     p.Room.ID,
		BookingPayment: BookingPayment{
			MonthlyRent:     p.Split.MonthlyRent.InexactFloat64(),
			SecurityDeposit: p.Split.SecurityDeposit.InexactFloat64(),
			TotalAmount:     p.Split.Total.InexactFloat64(),
			AdvanceAmount:   p.Split.Advance.InexactFloat64(),
			RemainingAmount: p.Split.Remaining.InexactFloat64(),
			Currency:        p.Currency,
		},
		UserSnapshot:     p.UserSnapshot,
		OwnerSnapshot:    p.OwnerSnapshot,
		PropertySnapshot: NewPropertySnapshot(p.Property),
		RoomSnapshot:     NewRoomSnapshot(p.Room),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// NewUnpaidBooking builds a booking from the plain create path:
// status payment_pending, payment pending.
func NewUnpaidBooking(p BookingParams) *Booking {
	b := newBooking(p)
	b.Status = BookingPaymentPending
	b.InitialState = InitialUnpaid
	b.PaymentStatus = PaymentPending
	return b
}

// NewPaidBooking builds a booking from the payment-verified path:
// status pending_approval, payment completed, gateway ids recorded verbatim.
func NewPaidBooking(p BookingParams, receipt PaymentReceipt, paidAt time.Time) *Booking {
	b := newBooking(p)
	b.Status = BookingPendingApproval
	b.InitialState = InitialPaid
	b.PaymentStatus = PaymentCompleted
	b.GatewayOrderID = &receipt.OrderID
	b.GatewayPaymentID = &receipt.PaymentID
	b.GatewaySignature = &receipt.Signature
	b.PaidAt = &paidAt
	return b
}

// ============================================================================
// REQUEST / RESPONSE TYPES
// ============================================================================

// CreateBookingRequest is the tenant payload for the plain create path
type CreateBookingRequest struct {
	RoomID     string `json:"room_id" validate:"required,uuid"`
	PropertyID string `json:"property_id" validate:"required,uuid"`
}

// RejectBookingRequest is the owner payload for rejecting a booking
type RejectBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// BookingStatusResponse answers whether a user already holds a live booking for a room
type BookingStatusResponse struct {
	HasBooking bool           `json:"has_booking"`
	Status     *BookingStatus `json:"status,omitempty"`
	BookingID  *uuid.UUID     `json:"booking_id,omitempty"`
}
