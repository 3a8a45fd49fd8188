package models

import "time"

// ParticipantRole is the closed set of roles a directory entry can hold.
type ParticipantRole string

const (
	RoleAuthor  ParticipantRole = "AUTHOR"
	RoleHandler ParticipantRole = "HANDLER"
)

// Valid reports whether the role is one of the known constants.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleAuthor, RoleHandler:
		return true
	}
	return false
}

// Participant is a directory entry keyed by the transport-supplied identity.
// Rows are append-only: role and tag are fixed at first registration, only
// the display name may be refreshed afterwards.
type Participant struct {
	ID          string          `db:"id" json:"id"`
	DisplayName string          `db:"display_name" json:"display_name"`
	Role        ParticipantRole `db:"role" json:"role"`
	Tag         *string         `db:"tag" json:"tag,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// ParticipantFilter constrains directory listings.
type ParticipantFilter struct {
	Role   *ParticipantRole
	Tag    string
	Search string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
