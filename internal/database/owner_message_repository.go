package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rentnest/marketplace-backend/internal/models"
)

// OwnerMessageRepository stores admin to owner messages
type OwnerMessageRepository struct {
	db *sqlx.DB
}

// NewOwnerMessageRepository creates a new OwnerMessageRepository
func NewOwnerMessageRepository(db *sqlx.DB) *OwnerMessageRepository {
	return &OwnerMessageRepository{db: db}
}

// Create persists a message
func (r *OwnerMessageRepository) Create(ctx context.Context, msg *models.OwnerMessage) error {
	query := `
		INSERT INTO owner_messages (id, admin_id, owner_id, message, created_at)
		VALUES (:id, :admin_id, :owner_id, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("failed to create owner message: %w", err)
	}
	return nil
}
