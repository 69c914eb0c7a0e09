package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rentnest/marketplace-backend/internal/models"
)

const roomColumns = `
	id, property_id, room_type, room_size, bed_type, occupancy, rent, floor, description,
	amenities, images, status, is_available,
	approval_status, approved_at, approved_by, rejection_reason,
	created_at, updated_at`

// RoomRepository handles room database operations
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func insertRoom(ctx context.Context, tx *sqlx.Tx, room *models.Room) error {
	query := `
		INSERT INTO rooms (
			id, property_id, room_type, room_size, bed_type, occupancy, rent, floor, description,
			amenities, images, status, is_available, approval_status, created_at, updated_at
		) VALUES (
			:id, :property_id, :room_type, :room_size, :bed_type, :occupancy, :rent, :floor, :description,
			:amenities, :images, :status, :is_available, :approval_status, :created_at, :updated_at
		)`
	_, err := tx.NamedExecContext(ctx, query, room)
	return err
}

// GetByID retrieves a room by ID. Returns (nil, nil) when not found.
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	err := r.db.GetContext(ctx, &room, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// ListByProperty returns the rooms of a property in creation order
func (r *RoomRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Room, error) {
	rooms := []models.Room{}
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE property_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rooms, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListPending returns rooms waiting for an admin decision, oldest first
func (r *RoomRepository) ListPending(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE approval_status = 'pending' ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("failed to list pending rooms: %w", err)
	}
	return rooms, nil
}

// ListPubliclyBookable returns rooms that are approved, active and available
// and whose property is approved as well
func (r *RoomRepository) ListPubliclyBookable(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	query := `
		SELECT ` + prefixed("r", roomColumns) + `
		FROM rooms r
		JOIN properties p ON p.id = r.property_id
		WHERE r.approval_status = 'approved'
		  AND p.approval_status = 'approved'
		  AND r.status = 'active'
		  AND r.is_available = TRUE
		ORDER BY r.rent ASC, r.created_at ASC`
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("failed to list bookable rooms: %w", err)
	}
	return rooms, nil
}

// UpdateApproval applies an admin decision to a room only; the parent property is untouched.
// Returns (nil, nil) when the room does not exist.
func (r *RoomRepository) UpdateApproval(
	ctx context.Context,
	id uuid.UUID,
	status models.ApprovalStatus,
	adminID uuid.UUID,
	reason *string,
) (*models.Room, error) {
	var room models.Room
	query := `
		UPDATE rooms SET
			approval_status = $2::approval_status,
			approved_at = NOW(),
			approved_by = $3,
			rejection_reason = CASE WHEN $2::approval_status = 'rejected' THEN $4::text ELSE NULL END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + roomColumns

	err := r.db.GetContext(ctx, &room, query, id, status, adminID, reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update room approval: %w", err)
	}
	return &room, nil
}

// UpdateStatus sets the operational status and, when given, the availability flag.
// Returns (nil, nil) when the room does not exist.
func (r *RoomRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RoomStatus, isAvailable *bool) (*models.Room, error) {
	var room models.Room
	query := `
		UPDATE rooms SET
			status = $2,
			is_available = COALESCE($3, is_available),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + roomColumns

	err := r.db.GetContext(ctx, &room, query, id, status, isAvailable)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update room status: %w", err)
	}
	return &room, nil
}

// Claim marks an available room unavailable in a single conditional update.
// Returns false when the room was not available at write time.
func (r *RoomRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET is_available = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_available = TRUE`, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected == 1, nil
}

// Release makes a room available again unless an active tenant occupies it
func (r *RoomRepository) Release(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET is_available = TRUE, updated_at = NOW()
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM tenants t WHERE t.room_id = $1 AND t.status = 'active')`, id)
	if err != nil {
		return fmt.Errorf("failed to release room: %w", err)
	}
	return nil
}
