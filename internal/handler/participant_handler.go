package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/supply-desk-api/internal/dto"
	"github.com/noah-isme/supply-desk-api/internal/models"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
	"github.com/noah-isme/supply-desk-api/pkg/response"
)

type directoryService interface {
	Register(ctx context.Context, req dto.RegisterParticipantRequest) (*models.Participant, error)
	Get(ctx context.Context, id string) (*models.Participant, error)
	List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error)
	Handlers(ctx context.Context) ([]models.Participant, error)
}

// ParticipantHandler exposes REST endpoints for the participant directory.
type ParticipantHandler struct {
	directory directoryService
}

// NewParticipantHandler constructs the handler.
func NewParticipantHandler(directory directoryService) *ParticipantHandler {
	return &ParticipantHandler{directory: directory}
}

// Register godoc
// @Summary Enroll a participant into the directory
// @Tags Participants
// @Accept json
// @Produce json
// @Param payload body dto.RegisterParticipantRequest true "Participant payload"
// @Success 201 {object} response.Envelope
// @Router /participants [post]
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req dto.RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid participant payload"))
		return
	}
	participant, err := h.directory.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, participant)
}

// List godoc
// @Summary List directory entries
// @Tags Participants
// @Produce json
// @Param role query string false "AUTHOR or HANDLER"
// @Param tag query string false "Routing tag"
// @Param search query string false "Display name search"
// @Success 200 {object} response.Envelope
// @Router /participants [get]
func (h *ParticipantHandler) List(c *gin.Context) {
	var query dto.ParticipantQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	filter := models.ParticipantFilter{
		Tag:    strings.TrimSpace(query.Tag),
		Search: strings.TrimSpace(query.Search),
	}
	if query.Role != "" {
		role := models.ParticipantRole(strings.ToUpper(strings.TrimSpace(query.Role)))
		if !role.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "role must be AUTHOR or HANDLER"))
			return
		}
		filter.Role = &role
	}

	participants, err := h.directory.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participants, nil)
}

// Get godoc
// @Summary Get one directory entry
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{id} [get]
func (h *ParticipantHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "participant id is required"))
		return
	}
	participant, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participant, nil)
}

// Handlers godoc
// @Summary List the handler roster
// @Tags Participants
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /participants/handlers [get]
func (h *ParticipantHandler) Handlers(c *gin.Context) {
	handlers, err := h.directory.Handlers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, handlers, nil)
}
