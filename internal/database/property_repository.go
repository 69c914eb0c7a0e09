package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rentnest/marketplace-backend/internal/models"
)

const propertyColumns = `
	id, owner_id, name, address, city, state, pincode, security_deposit,
	amenities, rules, images,
	approval_status, approved, approved_at, approved_by, rejection_reason,
	created_at, updated_at`

// PropertyRepository handles property database operations
type PropertyRepository struct {
	db *sqlx.DB
}

// NewPropertyRepository creates a new PropertyRepository
func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// CreateWithRooms inserts a property and all of its rooms in one transaction.
// Either every row is persisted or none is.
func (r *PropertyRepository) CreateWithRooms(ctx context.Context, property *models.Property, rooms []models.Room) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		propertyQuery := `
			INSERT INTO properties (
				id, owner_id, name, address, city, state, pincode, security_deposit,
				amenities, rules, images,
				approval_status, approved, created_at, updated_at
			) VALUES (
				:id, :owner_id, :name, :address, :city, :state, :pincode, :security_deposit,
				:amenities, :rules, :images,
				:approval_status, :approved, :created_at, :updated_at
			)`
		if _, err := tx.NamedExecContext(ctx, propertyQuery, property); err != nil {
			return fmt.Errorf("failed to insert property: %w", err)
		}

		for i := range rooms {
			if err := insertRoom(ctx, tx, &rooms[i]); err != nil {
				return fmt.Errorf("failed to insert room %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a property by ID. Returns (nil, nil) when not found.
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	err := r.db.GetContext(ctx, &property, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &property, nil
}

// ListByOwner returns all properties of an owner, newest first
func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	properties := []models.Property{}
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &properties, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// ListPending returns properties waiting for an admin decision, oldest first
func (r *PropertyRepository) ListPending(ctx context.Context) ([]models.Property, error) {
	properties := []models.Property{}
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE approval_status = 'pending' ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &properties, query); err != nil {
		return nil, fmt.Errorf("failed to list pending properties: %w", err)
	}
	return properties, nil
}

// UpdateContent writes owner-editable fields, but only while the property is not approved.
// Returns (nil, nil) when no row matched (missing or already approved).
func (r *PropertyRepository) UpdateContent(ctx context.Context, property *models.Property) (*models.Property, error) {
	query := `
		UPDATE properties SET
			name = :name, address = :address, city = :city, state = :state, pincode = :pincode,
			security_deposit = :security_deposit, amenities = :amenities, rules = :rules, images = :images,
			updated_at = NOW()
		WHERE id = :id AND approval_status <> 'approved'
		RETURNING ` + propertyColumns

	rows, err := r.db.NamedQueryContext(ctx, query, property)
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to update property: %w", err)
		}
		return nil, nil
	}
	var updated models.Property
	if err := rows.StructScan(&updated); err != nil {
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	return &updated, nil
}

// UpdateApproval applies an admin decision as a single atomic update.
// approved_at and approved_by are stamped on every call, including repeats.
// Returns (nil, nil) when the property does not exist.
func (r *PropertyRepository) UpdateApproval(
	ctx context.Context,
	id uuid.UUID,
	status models.ApprovalStatus,
	adminID uuid.UUID,
	reason *string,
) (*models.Property, error) {
	var property models.Property
	query := `
		UPDATE properties SET
			approval_status = $2::approval_status,
			approved = ($2::approval_status = 'approved'),
			approved_at = NOW(),
			approved_by = $3,
			rejection_reason = CASE WHEN $2::approval_status = 'rejected' THEN $4::text ELSE NULL END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + propertyColumns

	err := r.db.GetContext(ctx, &property, query, id, status, adminID, reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update property approval: %w", err)
	}
	return &property, nil
}
