package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the lifecycle event a notification describes
type NotificationType string

const (
	NotificationPropertyApproved NotificationType = "property_approved"
	NotificationPropertyRejected NotificationType = "property_rejected"
	NotificationRoomApproved     NotificationType = "room_approved"
	NotificationRoomRejected     NotificationType = "room_rejected"
	NotificationBookingRequest   NotificationType = "booking_request"
	NotificationBookingApproved  NotificationType = "booking_approved"
	NotificationBookingRejected  NotificationType = "booking_rejected"
	NotificationGeneral          NotificationType = "general"
)

// NotificationEvent is the payload handed to the notification dispatcher
type NotificationEvent struct {
	ID          uuid.UUID              `json:"id"`
	RecipientID uuid.UUID              `json:"recipientId"`
	Type        NotificationType       `json:"type"`
	RelatedIDs  map[string]string      `json:"relatedIds,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// NewNotificationEvent creates an event with id and timestamp set
func NewNotificationEvent(recipientID uuid.UUID, notificationType NotificationType) *NotificationEvent {
	return &NotificationEvent{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        notificationType,
		RelatedIDs:  map[string]string{},
		Metadata:    map[string]interface{}{},
		CreatedAt:   time.Now(),
	}
}

// WithRelated adds a related entity id
func (e *NotificationEvent) WithRelated(key string, id uuid.UUID) *NotificationEvent {
	e.RelatedIDs[key] = id.String()
	return e
}

// WithMeta adds a metadata entry
func (e *NotificationEvent) WithMeta(key string, value interface{}) *NotificationEvent {
	e.Metadata[key] = value
	return e
}

// MaxOwnerMessageLength bounds the admin to owner message channel
const MaxOwnerMessageLength = 500

// OwnerMessage is a free-text message from an admin to a property owner
type OwnerMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AdminID   uuid.UUID `json:"admin_id" db:"admin_id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SendOwnerMessageRequest is the admin payload for messaging an owner
type SendOwnerMessageRequest struct {
	OwnerID string `json:"owner_id" validate:"required,uuid"`
	Message string `json:"message"`
}
