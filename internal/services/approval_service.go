package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ApprovalService applies admin decisions to properties and rooms.
// The two entities move through pending/approved/rejected independently.
type ApprovalService struct {
	properties PropertyStore
	rooms      RoomStore
	messages   OwnerMessageStore
	notifier   *NotificationService
	logger     *logrus.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	properties PropertyStore,
	rooms RoomStore,
	messages OwnerMessageStore,
	notifier *NotificationService,
	logger *logrus.Logger,
) *ApprovalService {
	return &ApprovalService{
		properties: properties,
		rooms:      rooms,
		messages:   messages,
		notifier:   notifier,
		logger:     logger,
	}
}

func checkAction(action models.ApprovalAction) error {
	if !action.IsValid() {
		return &ValidationError{Field: "action", Message: "must be approve or reject"}
	}
	return nil
}

// SetPropertyApproval approves or rejects a property. Repeating a decision re-stamps
// approved_at/approved_by. Rooms of the property are not touched.
func (s *ApprovalService) SetPropertyApproval(
	ctx context.Context,
	propertyID uuid.UUID,
	action models.ApprovalAction,
	adminID uuid.UUID,
	reason *string,
) (*models.Property, error) {
	if err := checkAction(action); err != nil {
		return nil, err
	}

	property, err := s.properties.UpdateApproval(ctx, propertyID, action.ResultingStatus(), adminID, trimmedReason(action, reason))
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, notFound("property", propertyID)
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": propertyID,
		"admin_id":    adminID,
		"status":      property.ApprovalStatus,
	}).Info("Property approval updated")

	notificationType := models.NotificationPropertyApproved
	if action == models.ActionReject {
		notificationType = models.NotificationPropertyRejected
	}
	event := models.NewNotificationEvent(property.OwnerID, notificationType).
		WithRelated("propertyId", property.ID).
		WithMeta("propertyName", property.Label())
	if property.RejectionReason != nil {
		event.WithMeta("reason", *property.RejectionReason)
	}
	s.notifier.Notify(ctx, event)

	return property, nil
}

// SetRoomApproval approves or rejects a single room. The parent property is not touched.
func (s *ApprovalService) SetRoomApproval(
	ctx context.Context,
	roomID uuid.UUID,
	action models.ApprovalAction,
	adminID uuid.UUID,
	reason *string,
) (*models.Room, error) {
	if err := checkAction(action); err != nil {
		return nil, err
	}

	room, err := s.rooms.UpdateApproval(ctx, roomID, action.ResultingStatus(), adminID, trimmedReason(action, reason))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, notFound("room", roomID)
	}

	s.logger.WithFields(logrus.Fields{
		"room_id":  roomID,
		"admin_id": adminID,
		"status":   room.ApprovalStatus,
	}).Info("Room approval updated")

	// The owner is only reachable through the property; a failed lookup skips the notification
	property, err := s.properties.GetByID(ctx, room.PropertyID)
	if err != nil || property == nil {
		s.logger.WithError(err).WithField("room_id", roomID).Warn("Could not resolve room owner for notification")
		return room, nil
	}

	notificationType := models.NotificationRoomApproved
	if action == models.ActionReject {
		notificationType = models.NotificationRoomRejected
	}
	event := models.NewNotificationEvent(property.OwnerID, notificationType).
		WithRelated("propertyId", property.ID).
		WithRelated("roomId", room.ID).
		WithMeta("roomType", room.RoomType)
	if room.RejectionReason != nil {
		event.WithMeta("reason", *room.RejectionReason)
	}
	s.notifier.Notify(ctx, event)

	return room, nil
}

// SendOwnerMessage stores a free-text admin message and forwards it to the owner
func (s *ApprovalService) SendOwnerMessage(ctx context.Context, adminID uuid.UUID, req *models.SendOwnerMessageRequest) (*models.OwnerMessage, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, &ValidationError{Field: "message", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(text) > models.MaxOwnerMessageLength {
		return nil, &ValidationError{Field: "message", Message: "must be at most 500 characters"}
	}

	ownerID, err := parseID("owner_id", req.OwnerID)
	if err != nil {
		return nil, err
	}

	msg := &models.OwnerMessage{
		ID:        uuid.New(),
		AdminID:   adminID,
		OwnerID:   ownerID,
		Message:   text,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, models.NewNotificationEvent(ownerID, models.NotificationGeneral).
		WithRelated("messageId", msg.ID).
		WithMeta("message", text))

	return msg, nil
}

// ListPendingProperties returns the admin review queue for properties
func (s *ApprovalService) ListPendingProperties(ctx context.Context) ([]models.Property, error) {
	return s.properties.ListPending(ctx)
}

// ListPendingRooms returns the admin review queue for rooms
func (s *ApprovalService) ListPendingRooms(ctx context.Context) ([]models.Room, error) {
	return s.rooms.ListPending(ctx)
}

// trimmedReason keeps a non-empty reason for rejections only
func trimmedReason(action models.ApprovalAction, reason *string) *string {
	if action != models.ActionReject || reason == nil {
		return nil
	}
	r := strings.TrimSpace(*reason)
	if r == "" {
		return nil
	}
	return &r
}
