package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/supply-desk-api/internal/models"
	"github.com/noah-isme/supply-desk-api/internal/transport"
	"github.com/noah-isme/supply-desk-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkSent(ctx context.Context, id string, attempts int, at time.Time) error
	MarkFailed(ctx context.Context, id string, attempts int) error
	ListByRequest(ctx context.Context, requestID int64) ([]models.Notification, error)
}

type dispatchQueue interface {
	Enqueue(job jobs.Job) error
	Depth() int
}

type deliveryObserver interface {
	RecordDelivery(outcome string)
}

// NotificationService is the routing half of the notification fan-out: it
// composes the message for a lifecycle event, records it in the delivery
// ledger, and queues it for the courier. The ledger row is written before any
// delivery attempt, mirroring the persistence-first rule of the engine.
type NotificationService struct {
	repo       notificationStore
	queue      dispatchQueue
	courier    transport.Courier
	maxRetries int
	metrics    deliveryObserver
	logger     *zap.Logger
}

// NewNotificationService constructs the router.
func NewNotificationService(repo notificationStore, queue dispatchQueue, courier transport.Courier, maxRetries int, metrics deliveryObserver, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &NotificationService{
		repo:       repo,
		queue:      queue,
		courier:    courier,
		maxRetries: maxRetries,
		metrics:    metrics,
		logger:     logger,
	}
}

// Notify records and enqueues the notification for a lifecycle event.
func (s *NotificationService) Notify(ctx context.Context, event models.Event) error {
	notification := &models.Notification{
		RequestID:   event.RequestID,
		RecipientID: event.RecipientID,
		Kind:        event.Kind,
		Message:     ComposeMessage(event),
		Attachment:  event.Attachment,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	if s.queue == nil {
		return s.deliver(ctx, notification, 0)
	}
	if err := s.queue.Enqueue(jobs.Job{
		ID:      notification.ID,
		Type:    string(event.Kind),
		Payload: notification,
	}); err != nil {
		if markErr := s.repo.MarkFailed(ctx, notification.ID, 0); markErr != nil {
			s.logger.Warn("failed to mark notification failed", zap.Error(markErr))
		}
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// HandleJob is the queue handler delivering one queued notification.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		s.logger.Error("notification job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.deliver(ctx, notification, job.Attempt)
}

func (s *NotificationService) deliver(ctx context.Context, notification *models.Notification, attempt int) error {
	attempts := attempt + 1
	err := s.courier.Deliver(ctx, transport.Message{
		RecipientID: notification.RecipientID,
		Text:        notification.Message,
		Attachment:  notification.Attachment,
	})
	if err == nil {
		if markErr := s.repo.MarkSent(ctx, notification.ID, attempts, time.Now().UTC()); markErr != nil {
			s.logger.Warn("failed to mark notification sent", zap.Error(markErr))
		}
		s.observe("sent")
		return nil
	}

	s.logger.Warn("notification delivery failed",
		zap.String("notification_id", notification.ID),
		zap.Int64("request_id", notification.RequestID),
		zap.Int("attempt", attempts),
		zap.Error(err),
	)
	if attempts > s.maxRetries {
		if markErr := s.repo.MarkFailed(ctx, notification.ID, attempts); markErr != nil {
			s.logger.Warn("failed to mark notification failed", zap.Error(markErr))
		}
		s.observe("failed")
		return nil
	}
	s.observe("retried")
	return err
}

// History returns the delivery trail for one request.
func (s *NotificationService) History(ctx context.Context, requestID int64) ([]models.Notification, error) {
	return s.repo.ListByRequest(ctx, requestID)
}

// QueueDepth exposes the pending dispatch backlog for metrics.
func (s *NotificationService) QueueDepth() int {
	if s.queue == nil {
		return 0
	}
	return s.queue.Depth()
}

func (s *NotificationService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordDelivery(outcome)
	}
}

// ComposeMessage renders the human-readable notification text for an event.
func ComposeMessage(event models.Event) string {
	switch event.Kind {
	case models.EventAssigned:
		return fmt.Sprintf("New request #%d\n\n%s", event.RequestID, event.Body)
	case models.EventClaimed:
		return fmt.Sprintf("Request #%d was claimed by %s.", event.RequestID, event.HandlerName)
	case models.EventInProgress:
		return fmt.Sprintf("Request #%d was taken into work by %s.", event.RequestID, event.HandlerName)
	case models.EventCompleted:
		return fmt.Sprintf("Request #%d is completed.", event.RequestID)
	default:
		return fmt.Sprintf("Request #%d was updated.", event.RequestID)
	}
}
