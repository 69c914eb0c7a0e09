package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Dispatcher delivers notification events out of band
type Dispatcher interface {
	Dispatch(ctx context.Context, event *models.NotificationEvent) error
}

// KafkaDispatcher publishes events to a Kafka topic keyed by recipient,
// so one recipient's events stay ordered
type KafkaDispatcher struct {
	publisher EventPublisher
	topic     string
}

// NewKafkaDispatcher creates a dispatcher writing to topic
func NewKafkaDispatcher(publisher EventPublisher, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{publisher: publisher, topic: topic}
}

// Dispatch publishes the event
func (d *KafkaDispatcher) Dispatch(ctx context.Context, event *models.NotificationEvent) error {
	if err := d.publisher.Publish(ctx, d.topic, event.RecipientID.String(), event); err != nil {
		return &UpstreamUnavailableError{Service: "notification broker", Err: err}
	}
	return nil
}

// LogDispatcher writes events to the log; used when no broker is configured
type LogDispatcher struct {
	logger *logrus.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(logger *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs the event
func (d *LogDispatcher) Dispatch(ctx context.Context, event *models.NotificationEvent) error {
	d.logger.WithFields(logrus.Fields{
		"notification_id": event.ID,
		"recipient_id":    event.RecipientID,
		"type":            event.Type,
		"related_ids":     event.RelatedIDs,
	}).Info("Notification (log dispatcher)")
	return nil
}

// DefaultDispatchTimeout bounds one dispatch once it is detached from the request
const DefaultDispatchTimeout = 10 * time.Second

// NotificationService is the fire-and-forget front of the dispatcher
type NotificationService struct {
	dispatcher Dispatcher
	timeout    time.Duration
	logger     *logrus.Logger
	inflight   sync.WaitGroup
}

// NewNotificationService creates a new notification service
func NewNotificationService(dispatcher Dispatcher, logger *logrus.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, timeout: DefaultDispatchTimeout, logger: logger}
}

// Notify hands the event to the dispatcher in the background and returns at once.
// The dispatch outlives the caller's context, up to the dispatch timeout. Failures
// are logged and swallowed; the caller's operation has already succeeded.
func (s *NotificationService) Notify(ctx context.Context, event *models.NotificationEvent) {
	if s == nil || s.dispatcher == nil || event == nil {
		return
	}

	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithFields(logrus.Fields{
					"recipient_id": event.RecipientID,
					"type":         event.Type,
					"panic":        fmt.Sprint(r),
				}).Error("Notification dispatcher panicked")
			}
		}()

		if err := s.dispatcher.Dispatch(dispatchCtx, event); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"recipient_id": event.RecipientID,
				"type":         event.Type,
			}).Warn("Failed to dispatch notification")
		}
	}()
}

// Wait blocks until every notification handed to Notify has been dispatched or dropped
func (s *NotificationService) Wait() {
	if s == nil {
		return
	}
	s.inflight.Wait()
}
