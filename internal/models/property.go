package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus represents the admin approval state of a property or room
// Matches PostgreSQL ENUM: approval_status
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalAction is the admin decision applied to an entity
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
)

// IsValid reports whether the action is approve or reject
func (a ApprovalAction) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// ResultingStatus returns the approval status an action moves an entity to
func (a ApprovalAction) ResultingStatus() ApprovalStatus {
	if a == ActionApprove {
		return ApprovalApproved
	}
	return ApprovalRejected
}

// Property represents a rental property listed by an owner
type Property struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	OwnerID         uuid.UUID   `json:"owner_id" db:"owner_id"`
	Name            *string     `json:"name,omitempty" db:"name"`
	Address         string      `json:"address" db:"address"`
	City            *string     `json:"city,omitempty" db:"city"`
	State           *string     `json:"state,omitempty" db:"state"`
	Pincode         *string     `json:"pincode,omitempty" db:"pincode"`
	SecurityDeposit float64     `json:"security_deposit" db:"security_deposit"`
	Amenities       StringArray `json:"amenities" db:"amenities"`
	Rules           StringArray `json:"rules" db:"rules"`
	Images          StringArray `json:"images" db:"images"`

	// Approval
	ApprovalStatus  ApprovalStatus `json:"approval_status" db:"approval_status"`
	Approved        bool           `json:"approved" db:"approved"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy      *uuid.UUID     `json:"approved_by,omitempty" db:"approved_by"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Label returns a short human-readable label for the property
func (p *Property) Label() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return p.Address
}

// PropertyDraft is the owner-submitted content of a new property
type PropertyDraft struct {
	Name            *string  `json:"name,omitempty"`
	Address         string   `json:"address" validate:"required"`
	City            *string  `json:"city,omitempty"`
	State           *string  `json:"state,omitempty"`
	Pincode         *string  `json:"pincode,omitempty"`
	SecurityDeposit *float64 `json:"security_deposit" validate:"required,gte=0"`
	Amenities       []string `json:"amenities,omitempty"`
	Rules           []string `json:"rules,omitempty"`
	ImageRefs       []string `json:"image_refs,omitempty"`
}

// CreatePropertyRequest is the structured payload for atomic property creation.
// Room image upload results arrive already resolved to references, one list per room.
type CreatePropertyRequest struct {
	Property PropertyDraft `json:"property"`
	Rooms    []RoomDraft   `json:"rooms" validate:"dive"`
}

// UpdatePropertyRequest carries owner edits to property content fields
type UpdatePropertyRequest struct {
	Name            *string   `json:"name,omitempty"`
	Address         *string   `json:"address,omitempty" validate:"omitempty,min=1"`
	City            *string   `json:"city,omitempty"`
	State           *string   `json:"state,omitempty"`
	Pincode         *string   `json:"pincode,omitempty"`
	SecurityDeposit *float64  `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`
	Amenities       *[]string `json:"amenities,omitempty"`
	Rules           *[]string `json:"rules,omitempty"`
	ImageRefs       *[]string `json:"image_refs,omitempty"`
}

// PropertyWithRooms is the response shape for property reads and creation
type PropertyWithRooms struct {
	Property *Property `json:"property"`
	Rooms    []Room    `json:"rooms"`
}

// ApprovalRequest is the admin payload for approval endpoints
type ApprovalRequest struct {
	Action ApprovalAction `json:"action"`
	Reason *string        `json:"reason,omitempty"`
}
