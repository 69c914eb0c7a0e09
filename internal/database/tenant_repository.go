package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rentnest/marketplace-backend/internal/models"
)

const tenantColumns = `
	id, booking_id, user_id, owner_id, property_id, room_id,
	status, check_in, check_out, created_at, updated_at`

// TenantRepository handles tenant database operations
type TenantRepository struct {
	db *sqlx.DB
}

// NewTenantRepository creates a new TenantRepository
func NewTenantRepository(db *sqlx.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func insertTenant(ctx context.Context, tx *sqlx.Tx, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (
			id, booking_id, user_id, owner_id, property_id, room_id,
			status, check_in, created_at, updated_at
		) VALUES (
			:id, :booking_id, :user_id, :owner_id, :property_id, :room_id,
			:status, :check_in, :created_at, :updated_at
		)`
	_, err := tx.NamedExecContext(ctx, query, tenant)
	return err
}

// GetByID retrieves a tenant by ID. Returns (nil, nil) when not found.
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.GetContext(ctx, &tenant, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

// CheckOut stamps check_out on an active tenant and frees the room in one transaction.
// Returns (nil, nil) when the tenant is missing or already checked out.
func (r *TenantRepository) CheckOut(ctx context.Context, id uuid.UUID, checkOut time.Time) (*models.Tenant, error) {
	var (
		tenant models.Tenant
		found  bool
	)

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &tenant, `
			UPDATE tenants SET status = 'checked_out', check_out = $2, updated_at = $2
			WHERE id = $1 AND status = 'active'
			RETURNING `+tenantColumns, id, checkOut)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to check out tenant: %w", err)
		}
		found = true

		if _, err := tx.ExecContext(ctx, `
			UPDATE rooms SET is_available = TRUE, updated_at = NOW() WHERE id = $1`,
			tenant.RoomID); err != nil {
			return fmt.Errorf("failed to release room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &tenant, nil
}
