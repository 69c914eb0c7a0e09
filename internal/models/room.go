package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus represents the operational state of a room
type RoomStatus string

const (
	RoomStatusActive      RoomStatus = "active"
	RoomStatusInactive    RoomStatus = "inactive"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// IsValid reports whether the status is one of the known room states
func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomStatusActive, RoomStatusInactive, RoomStatusMaintenance:
		return true
	}
	return false
}

// roomOccupancy is the fixed room type → occupancy table
var roomOccupancy = map[string]int{
	"Single": 1,
	"Double": 2,
	"Triple": 3,
	"Quad":   4,
	"Master": 2,
	"Studio": 1,
}

// OccupancyForRoomType derives occupancy from the room type.
// The second return value is false for unknown room types.
func OccupancyForRoomType(roomType string) (int, bool) {
	occupancy, ok := roomOccupancy[roomType]
	return occupancy, ok
}

// Room represents a bookable room belonging to a property
type Room struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	PropertyID  uuid.UUID   `json:"property_id" db:"property_id"`
	RoomType    string      `json:"room_type" db:"room_type"`
	RoomSize    float64     `json:"room_size" db:"room_size"`
	BedType     string      `json:"bed_type" db:"bed_type"`
	Occupancy   int         `json:"occupancy" db:"occupancy"`
	Rent        float64     `json:"rent" db:"rent"`
	Floor       *int        `json:"floor,omitempty" db:"floor"`
	Description *string     `json:"description,omitempty" db:"description"`
	Amenities   StringArray `json:"amenities" db:"amenities"`
	Images      StringArray `json:"images" db:"images"`

	Status      RoomStatus `json:"status" db:"status"`
	IsAvailable bool       `json:"is_available" db:"is_available"`

	// Approval
	ApprovalStatus  ApprovalStatus `json:"approval_status" db:"approval_status"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy      *uuid.UUID     `json:"approved_by,omitempty" db:"approved_by"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsBookable reports whether the room can receive a booking on its own terms.
// Public listing additionally requires the parent property to be approved.
func (r *Room) IsBookable() bool {
	return r.ApprovalStatus == ApprovalApproved && r.Status == RoomStatusActive && r.IsAvailable
}

// RoomDraft is the owner-submitted content of a new room
type RoomDraft struct {
	RoomType    string   `json:"room_type" validate:"required"`
	RoomSize    float64  `json:"room_size" validate:"required,gt=0"`
	BedType     string   `json:"bed_type" validate:"required"`
	Rent        float64  `json:"rent" validate:"required,gt=0"`
	Floor       *int     `json:"floor,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	ImageRefs   []string `json:"image_refs,omitempty"`
}

// UpdateRoomStatusRequest is the owner payload for changing a room's operational state
type UpdateRoomStatusRequest struct {
	Status      RoomStatus `json:"status"`
	IsAvailable *bool      `json:"is_available,omitempty"`
}
