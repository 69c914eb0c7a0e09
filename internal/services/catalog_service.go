package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// CatalogService manages owner-submitted properties and rooms
type CatalogService struct {
	properties PropertyStore
	rooms      RoomStore
	logger     *logrus.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(properties PropertyStore, rooms RoomStore, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		properties: properties,
		rooms:      rooms,
		logger:     logger,
	}
}

// ============================================================================
// CREATE
// ============================================================================

// CreateProperty validates the drafts and persists the property with all of its rooms
// as one unit. Both approval statuses start at pending.
func (s *CatalogService) CreateProperty(ctx context.Context, ownerID uuid.UUID, req *models.CreatePropertyRequest) (*models.PropertyWithRooms, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Property.Address) == "" {
		return nil, &ValidationError{Field: "property.address", Message: "is required"}
	}

	now := time.Now()
	property := &models.Property{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Name:            req.Property.Name,
		Address:         strings.TrimSpace(req.Property.Address),
		City:            req.Property.City,
		State:           req.Property.State,
		Pincode:         req.Property.Pincode,
		SecurityDeposit: *req.Property.SecurityDeposit,
		Amenities:       models.StringArray(req.Property.Amenities),
		Rules:           models.StringArray(req.Property.Rules),
		Images:          models.StringArray(req.Property.ImageRefs),
		ApprovalStatus:  models.ApprovalPending,
		Approved:        false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	rooms := make([]models.Room, 0, len(req.Rooms))
	for i, draft := range req.Rooms {
		occupancy, ok := models.OccupancyForRoomType(draft.RoomType)
		if !ok {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("rooms[%d].room_type", i),
				Message: fmt.Sprintf("unknown room type %q", draft.RoomType),
			}
		}
		rooms = append(rooms, models.Room{
			ID:             uuid.New(),
			PropertyID:     property.ID,
			RoomType:       draft.RoomType,
			RoomSize:       draft.RoomSize,
			BedType:        draft.BedType,
			Occupancy:      occupancy,
			Rent:           draft.Rent,
			Floor:          draft.Floor,
			Description:    draft.Description,
			Amenities:      models.StringArray(draft.Amenities),
			Images:         models.StringArray(draft.ImageRefs),
			Status:         models.RoomStatusActive,
			IsAvailable:    true,
			ApprovalStatus: models.ApprovalPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := s.properties.CreateWithRooms(ctx, property, rooms); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"owner_id":    ownerID,
			"property_id": property.ID,
			"rooms":       len(rooms),
		}).Error("Property creation rolled back")
		return nil, &TransactionAbortError{Op: "create property", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id":    ownerID,
		"property_id": property.ID,
		"rooms":       len(rooms),
	}).Info("Property created")

	return &models.PropertyWithRooms{Property: property, Rooms: rooms}, nil
}

// ============================================================================
// READ
// ============================================================================

// GetProperty returns a property with its rooms
func (s *CatalogService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.PropertyWithRooms, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, notFound("property", propertyID)
	}

	rooms, err := s.rooms.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return &models.PropertyWithRooms{Property: property, Rooms: rooms}, nil
}

// ListOwnerProperties returns the owner's properties
func (s *CatalogService) ListOwnerProperties(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	return s.properties.ListByOwner(ctx, ownerID)
}

// ListApprovedRooms returns rooms visible to tenants: room and property approved,
// room active and available
func (s *CatalogService) ListApprovedRooms(ctx context.Context) ([]models.Room, error) {
	return s.rooms.ListPubliclyBookable(ctx)
}

// ============================================================================
// OWNER EDITS
// ============================================================================

// UpdatePropertyContent applies owner edits. Approved properties are frozen.
func (s *CatalogService) UpdatePropertyContent(ctx context.Context, ownerID, propertyID uuid.UUID, req *models.UpdatePropertyRequest) (*models.Property, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, notFound("property", propertyID)
	}
	if property.OwnerID != ownerID {
		return nil, &UnauthorizedError{Message: "You are not the owner of this property"}
	}
	if property.ApprovalStatus == models.ApprovalApproved {
		return nil, conflict(ReasonPropertyApproved, "Approved properties cannot be edited")
	}

	if req.Name != nil {
		property.Name = req.Name
	}
	if req.Address != nil {
		property.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		property.City = req.City
	}
	if req.State != nil {
		property.State = req.State
	}
	if req.Pincode != nil {
		property.Pincode = req.Pincode
	}
	if req.SecurityDeposit != nil {
		property.SecurityDeposit = *req.SecurityDeposit
	}
	if req.Amenities != nil {
		property.Amenities = models.StringArray(*req.Amenities)
	}
	if req.Rules != nil {
		property.Rules = models.StringArray(*req.Rules)
	}
	if req.ImageRefs != nil {
		property.Images = models.StringArray(*req.ImageRefs)
	}
	if property.Address == "" {
		return nil, &ValidationError{Field: "address", Message: "is required"}
	}

	updated, err := s.properties.UpdateContent(ctx, property)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// approved between the read and the write
		return nil, conflict(ReasonPropertyApproved, "Approved properties cannot be edited")
	}
	return updated, nil
}

// UpdateRoomStatus lets the owner switch a room between active, inactive and maintenance
// and toggle its availability
func (s *CatalogService) UpdateRoomStatus(ctx context.Context, ownerID, roomID uuid.UUID, req *models.UpdateRoomStatusRequest) (*models.Room, error) {
	if !req.Status.IsValid() {
		return nil, &ValidationError{Field: "status", Message: "must be one of active, inactive, maintenance"}
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, notFound("room", roomID)
	}

	property, err := s.properties.GetByID(ctx, room.PropertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, notFound("property", room.PropertyID)
	}
	if property.OwnerID != ownerID {
		return nil, &UnauthorizedError{Message: "You are not the owner of this room"}
	}

	updated, err := s.rooms.UpdateStatus(ctx, roomID, req.Status, req.IsAvailable)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, notFound("room", roomID)
	}

	s.logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"status":  updated.Status,
	}).Info("Room status updated")
	return updated, nil
}
