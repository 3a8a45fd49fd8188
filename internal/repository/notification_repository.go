package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/supply-desk-api/internal/models"
)

// NotificationRepository persists the outbound delivery ledger.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a queued notification row.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.Status == "" {
		notification.Status = models.NotificationQueued
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications
	(id, request_id, recipient_id, kind, message, attachment, status, attempts, created_at, delivered_at)
	VALUES (:id, :request_id, :recipient_id, :kind, :message, :attachment, :status, :attempts, :created_at, :delivered_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// MarkSent records a successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, attempts int, at time.Time) error {
	const query = `UPDATE notifications SET status = $1, attempts = $2, delivered_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, models.NotificationSent, attempts, at, id); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure after retries ran out.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, attempts int) error {
	const query = `UPDATE notifications SET status = $1, attempts = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.NotificationFailed, attempts, id); err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

// ListByRequest returns the delivery trail for one request, oldest first.
func (r *NotificationRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.Notification, error) {
	const query = `SELECT id, request_id, recipient_id, kind, message, attachment, status, attempts, created_at, delivered_at
	FROM notifications WHERE request_id = $1 ORDER BY created_at ASC`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, requestID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
