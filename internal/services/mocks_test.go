package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/pkg/identity"
	"github.com/rentnest/marketplace-backend/pkg/razorpay"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type mockPropertyStore struct{ mock.Mock }

func (m *mockPropertyStore) CreateWithRooms(ctx context.Context, property *models.Property, rooms []models.Room) error {
	return m.Called(ctx, property, rooms).Error(0)
}

func (m *mockPropertyStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *mockPropertyStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	args := m.Called(ctx, ownerID)
	p, _ := args.Get(0).([]models.Property)
	return p, args.Error(1)
}

func (m *mockPropertyStore) ListPending(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]models.Property)
	return p, args.Error(1)
}

func (m *mockPropertyStore) UpdateContent(ctx context.Context, property *models.Property) (*models.Property, error) {
	args := m.Called(ctx, property)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *mockPropertyStore) UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus, adminID uuid.UUID, reason *string) (*models.Property, error) {
	args := m.Called(ctx, id, status, adminID, reason)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

type mockRoomStore struct{ mock.Mock }

func (m *mockRoomStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

func (m *mockRoomStore) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Room, error) {
	args := m.Called(ctx, propertyID)
	r, _ := args.Get(0).([]models.Room)
	return r, args.Error(1)
}

func (m *mockRoomStore) ListPending(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]models.Room)
	return r, args.Error(1)
}

func (m *mockRoomStore) ListPubliclyBookable(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]models.Room)
	return r, args.Error(1)
}

func (m *mockRoomStore) UpdateApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus, adminID uuid.UUID, reason *string) (*models.Room, error) {
	args := m.Called(ctx, id, status, adminID, reason)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

func (m *mockRoomStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RoomStatus, isAvailable *bool) (*models.Room, error) {
	args := m.Called(ctx, id, status, isAvailable)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

func (m *mockRoomStore) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRoomStore) Release(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockBookingStore struct{ mock.Mock }

func (m *mockBookingStore) Create(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockBookingStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	args := m.Called(ctx, ownerID)
	b, _ := args.Get(0).([]models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) ListPendingApprovalByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	args := m.Called(ctx, ownerID)
	b, _ := args.Get(0).([]models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	b, _ := args.Get(0).([]models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) FindLive(ctx context.Context, userID, roomID uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, userID, roomID)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) MarkPaid(ctx context.Context, id uuid.UUID, receipt models.PaymentReceipt, paidAt time.Time) (*models.Booking, error) {
	args := m.Called(ctx, id, receipt, paidAt)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) Reject(ctx context.Context, id uuid.UUID, reason *string) (*models.Booking, error) {
	args := m.Called(ctx, id, reason)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) DeleteCancellable(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) DeleteStalePaymentPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, cutoff)
	b, _ := args.Get(0).([]models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) ConfirmWithTenant(ctx context.Context, bookingID uuid.UUID, confirmedAt time.Time) (*models.Booking, *models.Tenant, error) {
	args := m.Called(ctx, bookingID, confirmedAt)
	b, _ := args.Get(0).(*models.Booking)
	t, _ := args.Get(1).(*models.Tenant)
	return b, t, args.Error(2)
}

type mockTenantStore struct{ mock.Mock }

func (m *mockTenantStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Tenant)
	return t, args.Error(1)
}

func (m *mockTenantStore) CheckOut(ctx context.Context, id uuid.UUID, checkOut time.Time) (*models.Tenant, error) {
	args := m.Called(ctx, id, checkOut)
	t, _ := args.Get(0).(*models.Tenant)
	return t, args.Error(1)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Create(ctx context.Context, msg *models.OwnerMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type mockAuditStore struct{ mock.Mock }

func (m *mockAuditStore) Log(ctx context.Context, audit *models.PaymentAudit) error {
	return m.Called(ctx, audit).Error(0)
}

func (m *mockAuditStore) ListByOrderID(ctx context.Context, orderID string) ([]*models.PaymentAudit, error) {
	args := m.Called(ctx, orderID)
	a, _ := args.Get(0).([]*models.PaymentAudit)
	return a, args.Error(1)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Configured() bool { return m.Called().Bool(0) }

func (m *mockGateway) KeyID() string { return m.Called().String(0) }

func (m *mockGateway) CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	args := m.Called(ctx, req)
	o, _ := args.Get(0).(*razorpay.Order)
	return o, args.Error(1)
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}

type mockIdentity struct{ mock.Mock }

func (m *mockIdentity) GetPublicUser(ctx context.Context, id uuid.UUID) (*identity.PublicUser, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*identity.PublicUser)
	return u, args.Error(1)
}

type mockSnapshotCache struct{ mock.Mock }

func (m *mockSnapshotCache) GetUserSnapshot(ctx context.Context, userID uuid.UUID) (*models.UserSnapshot, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*models.UserSnapshot)
	return s, args.Error(1)
}

func (m *mockSnapshotCache) SetUserSnapshot(ctx context.Context, userID uuid.UUID, snapshot models.UserSnapshot) error {
	return m.Called(ctx, userID, snapshot).Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, event *models.NotificationEvent) error {
	return m.Called(ctx, event).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	return m.Called(ctx, topic, key, payload).Error(0)
}

// ============================================================================
// FIXTURES
// ============================================================================

func approvedProperty(ownerID uuid.UUID, deposit float64) *models.Property {
	name := "Lake View"
	return &models.Property{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Name:            &name,
		Address:         "12 Lake Road",
		SecurityDeposit: deposit,
		ApprovalStatus:  models.ApprovalApproved,
		Approved:        true,
	}
}

func bookableRoom(propertyID uuid.UUID, rent float64) *models.Room {
	return &models.Room{
		ID:             uuid.New(),
		PropertyID:     propertyID,
		RoomType:       "Double",
		BedType:        "Queen",
		RoomSize:       180,
		Occupancy:      2,
		Rent:           rent,
		Status:         models.RoomStatusActive,
		IsAvailable:    true,
		ApprovalStatus: models.ApprovalApproved,
	}
}

// silentNotifier drops every event
func silentNotifier() *NotificationService {
	return NewNotificationService(nil, testLogger())
}

// blankSnapshots never reaches an identity service
func blankSnapshots() *SnapshotService {
	return NewSnapshotService(nil, nil, testLogger())
}
