package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// SnapshotService captures user profile snapshots for bookings.
// Every failure degrades to an empty snapshot; booking never waits on identity.
type SnapshotService struct {
	identity IdentityClient
	cache    SnapshotCache
	logger   *logrus.Logger
}

// NewSnapshotService creates a snapshot service. cache may be nil.
func NewSnapshotService(identity IdentityClient, cache SnapshotCache, logger *logrus.Logger) *SnapshotService {
	return &SnapshotService{identity: identity, cache: cache, logger: logger}
}

// UserSnapshot returns the user's public profile, or an empty snapshot when it cannot be fetched
func (s *SnapshotService) UserSnapshot(ctx context.Context, userID uuid.UUID) models.UserSnapshot {
	log := s.logger.WithField("user_id", userID)

	if s.cache != nil {
		cached, err := s.cache.GetUserSnapshot(ctx, userID)
		if err != nil {
			log.WithError(err).Warn("Snapshot cache read failed")
		} else if cached != nil {
			return *cached
		}
	}

	if s.identity == nil {
		return models.UserSnapshot{}
	}

	user, err := s.identity.GetPublicUser(ctx, userID)
	if err != nil {
		log.WithError(&UpstreamUnavailableError{Service: "identity service", Err: err}).
			Warn("Failed to fetch user snapshot, continuing with blank snapshot")
		return models.UserSnapshot{}
	}

	snapshot := models.UserSnapshot{Name: user.Name, Email: user.Email, Phone: user.Phone}

	if s.cache != nil {
		if err := s.cache.SetUserSnapshot(ctx, userID, snapshot); err != nil {
			log.WithError(err).Warn("Snapshot cache write failed")
		}
	}
	return snapshot
}
