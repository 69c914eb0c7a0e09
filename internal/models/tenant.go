package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus represents a tenant's occupancy state
type TenantStatus string

const (
	TenantActive     TenantStatus = "active"
	TenantCheckedOut TenantStatus = "checked_out"
)

// Tenant is created from a confirmed booking and tracks occupancy of a room
type Tenant struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	BookingID  uuid.UUID    `json:"booking_id" db:"booking_id"`
	UserID     uuid.UUID    `json:"user_id" db:"user_id"`
	OwnerID    uuid.UUID    `json:"owner_id" db:"owner_id"`
	PropertyID uuid.UUID    `json:"property_id" db:"property_id"`
	RoomID     uuid.UUID    `json:"room_id" db:"room_id"`
	Status     TenantStatus `json:"status" db:"status"`
	CheckIn    time.Time    `json:"check_in" db:"check_in"`
	CheckOut   *time.Time   `json:"check_out,omitempty" db:"check_out"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// NewTenantFromBooking derives an active tenant record from a confirmed booking
func NewTenantFromBooking(b *Booking, checkIn time.Time) *Tenant {
	return &Tenant{
		ID:         uuid.New(),
		BookingID:  b.ID,
		UserID:     b.UserID,
		OwnerID:    b.OwnerID,
		PropertyID: b.PropertyID,
		RoomID:     b.RoomID,
		Status:     TenantActive,
		CheckIn:    checkIn,
		CreatedAt:  checkIn,
		UpdatedAt:  checkIn,
	}
}
