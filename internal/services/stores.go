package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/pkg/identity"
	"github.com/rentnest/marketplace-backend/pkg/razorpay"
)

// Storage and upstream contracts the services depend on. The database, cache
// and pkg clients satisfy them; tests substitute testify mocks.

// PropertyStore persists properties
type PropertyStore interface {
	CreateWithRooms(ctx context.Context, property *models.Property, rooms []models.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error)
	ListPending(ctx context.Context) ([]models.Property, error)
	UpdateContent(ctx context.Context, property *models.Property) (*models.Property, error)
	UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus, adminID uuid.UUID, reason *string) (*models.Property, error)
}

// RoomStore persists rooms
type RoomStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Room, error)
	ListPending(ctx context.Context) ([]models.Room, error)
	ListPubliclyBookable(ctx context.Context) ([]models.Room, error)
	UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus, adminID uuid.UUID, reason *string) (*models.Room, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RoomStatus, isAvailable *bool) (*models.Room, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
}

// BookingStore persists bookings
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error)
	ListPendingApprovalByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	FindLive(ctx context.Context, userID, roomID uuid.UUID) (*models.Booking, error)
	MarkPaid(ctx context.Context, id uuid.UUID, receipt models.PaymentReceipt, paidAt time.Time) (*models.Booking, error)
	Reject(ctx context.Context, id uuid.UUID, reason *string) (*models.Booking, error)
	DeleteCancellable(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	DeleteStalePaymentPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	ConfirmWithTenant(ctx context.Context, bookingID uuid.UUID, confirmedAt time.Time) (*models.Booking, *models.Tenant, error)
}

// TenantStore persists tenants
type TenantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	CheckOut(ctx context.Context, id uuid.UUID, checkOut time.Time) (*models.Tenant, error)
}

// OwnerMessageStore persists admin to owner messages
type OwnerMessageStore interface {
	Create(ctx context.Context, msg *models.OwnerMessage) error
}

// PaymentAuditStore appends payment audit entries and reads an order's trail
type PaymentAuditStore interface {
	Log(ctx context.Context, audit *models.PaymentAudit) error
	ListByOrderID(ctx context.Context, orderID string) ([]*models.PaymentAudit, error)
}

// PaymentGateway creates orders and checks checkout signatures
type PaymentGateway interface {
	Configured() bool
	KeyID() string
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// IdentityClient fetches public user profiles
type IdentityClient interface {
	GetPublicUser(ctx context.Context, id uuid.UUID) (*identity.PublicUser, error)
}

// SnapshotCache caches user snapshots
type SnapshotCache interface {
	GetUserSnapshot(ctx context.Context, userID uuid.UUID) (*models.UserSnapshot, error)
	SetUserSnapshot(ctx context.Context, userID uuid.UUID, snapshot models.UserSnapshot) error
}

// EventPublisher writes keyed messages to a topic
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}
