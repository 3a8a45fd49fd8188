package models

import "time"

// EventKind enumerates lifecycle events that produce notifications.
type EventKind string

const (
	EventSubmitted  EventKind = "SUBMITTED"
	EventAssigned   EventKind = "ASSIGNED"
	EventClaimed    EventKind = "CLAIMED"
	EventInProgress EventKind = "IN_PROGRESS"
	EventCompleted  EventKind = "COMPLETED"
)

// Event is emitted by the lifecycle engine after a transition is durable.
type Event struct {
	RequestID   int64
	Kind        EventKind
	RecipientID string
	Body        string
	HandlerName string
	Attachment  *string
}

// NotificationStatus tracks delivery progress for a ledger row.
type NotificationStatus string

const (
	NotificationQueued NotificationStatus = "QUEUED"
	NotificationSent   NotificationStatus = "SENT"
	NotificationFailed NotificationStatus = "FAILED"
)

// Notification is one outbound message recorded in the delivery ledger.
type Notification struct {
	ID          string             `db:"id" json:"id"`
	RequestID   int64              `db:"request_id" json:"request_id"`
	RecipientID string             `db:"recipient_id" json:"recipient_id"`
	Kind        EventKind          `db:"kind" json:"kind"`
	Message     string             `db:"message" json:"message"`
	Attachment  *string            `db:"attachment" json:"attachment,omitempty"`
	Status      NotificationStatus `db:"status" json:"status"`
	Attempts    int                `db:"attempts" json:"attempts"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	DeliveredAt *time.Time         `db:"delivered_at" json:"delivered_at,omitempty"`
}
