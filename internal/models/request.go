package models

import "time"

// RequestStatus captures the lifecycle states of a supply request.
type RequestStatus string

const (
	StatusSubmitted  RequestStatus = "SUBMITTED"
	StatusAssigned   RequestStatus = "ASSIGNED"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusCompleted  RequestStatus = "COMPLETED"
)

// Valid reports whether the status is a known lifecycle state.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusAssigned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted
}

// DeadlineLayout is the only accepted calendar format for request deadlines.
const DeadlineLayout = "2006-01-02"

// Request is a unit of work submitted by an author and fulfilled by a handler.
// Rows are never deleted; the table doubles as the audit ledger.
type Request struct {
	ID              int64         `db:"id" json:"id"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	AuthorID        string        `db:"author_id" json:"author_id"`
	AuthorName      string        `db:"author_name" json:"author_name"`
	Tag             *string       `db:"tag" json:"tag,omitempty"`
	Body            string        `db:"body" json:"body"`
	Attachment      *string       `db:"attachment" json:"attachment,omitempty"`
	Deadline        *time.Time    `db:"deadline" json:"deadline,omitempty"`
	HandlerID       *string       `db:"handler_id" json:"handler_id,omitempty"`
	Status          RequestStatus `db:"status" json:"status"`
	StatusChangedAt time.Time     `db:"status_changed_at" json:"status_changed_at"`
	ClosingDocument *string       `db:"closing_document" json:"closing_document,omitempty"`
}

// RequestFilter constrains ledger listings (newest first).
type RequestFilter struct {
	Status    []RequestStatus
	AuthorID  string
	HandlerID string
	Tag       string
	Limit     int
	Offset    int
}
