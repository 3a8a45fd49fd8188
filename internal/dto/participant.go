package dto

import "github.com/noah-isme/supply-desk-api/internal/models"

// RegisterParticipantRequest enrolls a participant into the directory.
// Handler enrollment is an operator action; authors are usually auto-registered
// on first submission.
type RegisterParticipantRequest struct {
	ID          string                 `json:"id" binding:"required" validate:"required"`
	DisplayName string                 `json:"display_name" binding:"required" validate:"required"`
	Role        models.ParticipantRole `json:"role" binding:"required" validate:"required,participant_role"`
	Tag         *string                `json:"tag,omitempty"`
}

// ParticipantQuery mirrors supported directory listing filters.
type ParticipantQuery struct {
	Role   string `form:"role"`
	Tag    string `form:"tag"`
	Search string `form:"search"`
}
