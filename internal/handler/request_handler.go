package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/supply-desk-api/internal/dto"
	"github.com/noah-isme/supply-desk-api/internal/models"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
	"github.com/noah-isme/supply-desk-api/pkg/response"
)

type lifecycleService interface {
	Submit(ctx context.Context, req dto.SubmitRequestPayload, authorID, authorName string) (*models.Request, error)
	Assign(ctx context.Context, id int64, handlerID string) (*models.Request, error)
	Claim(ctx context.Context, id int64, handlerID string) (*models.Request, error)
	StartWork(ctx context.Context, id int64, actorID string) (*models.Request, error)
	Complete(ctx context.Context, id int64, actorID string, closingDocument *string) (*models.Request, error)
	Get(ctx context.Context, id int64) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, *models.Pagination, error)
}

type assignmentReader interface {
	Candidates(ctx context.Context) ([]models.Participant, error)
	Policy() string
}

type notificationHistory interface {
	History(ctx context.Context, requestID int64) ([]models.Notification, error)
}

// RequestHandler exposes REST endpoints for the request lifecycle.
type RequestHandler struct {
	lifecycle     lifecycleService
	assignments   assignmentReader
	notifications notificationHistory
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(lifecycle lifecycleService, assignments assignmentReader, notifications notificationHistory) *RequestHandler {
	return &RequestHandler{lifecycle: lifecycle, assignments: assignments, notifications: notifications}
}

// Submit godoc
// @Summary Submit a supply request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.SubmitRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request payload"))
		return
	}
	request, err := h.lifecycle.Submit(c.Request.Context(), req, claims.ParticipantID, claims.DisplayName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List requests from the ledger
// @Tags Requests
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param author_id query string false "Author participant id"
// @Param handler_id query string false "Handler participant id"
// @Param tag query string false "Routing tag"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	var query dto.RequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	filter := models.RequestFilter{
		AuthorID:  strings.TrimSpace(query.AuthorID),
		HandlerID: strings.TrimSpace(query.HandlerID),
		Tag:       strings.TrimSpace(query.Tag),
		Limit:     query.Limit,
	}
	if query.Page > 1 && query.Limit > 0 {
		filter.Offset = (query.Page - 1) * query.Limit
	}
	if query.Status != "" {
		for _, part := range strings.Split(query.Status, ",") {
			status := models.RequestStatus(strings.ToUpper(strings.TrimSpace(part)))
			if status == "" {
				continue
			}
			if !status.Valid() {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status filter"))
				return
			}
			filter.Status = append(filter.Status, status)
		}
	}

	requests, pagination, err := h.lifecycle.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get one request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	request, err := h.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Assign godoc
// @Summary Assign a request to a handler
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body dto.AssignRequestPayload true "Chosen handler"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/assign [post]
func (h *RequestHandler) Assign(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var req dto.AssignRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "handler_id is required"))
		return
	}
	request, err := h.lifecycle.Assign(c.Request.Context(), id, req.HandlerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Claim godoc
// @Summary Claim an unassigned request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/claim [post]
func (h *RequestHandler) Claim(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	request, err := h.lifecycle.Claim(c.Request.Context(), id, claims.ParticipantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Start godoc
// @Summary Start work on an assigned request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/start [post]
func (h *RequestHandler) Start(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	request, err := h.lifecycle.StartWork(c.Request.Context(), id, claims.ParticipantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Complete godoc
// @Summary Complete a request in progress
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body dto.CompleteRequestPayload false "Closing document"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	var req dto.CompleteRequestPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid completion payload"))
			return
		}
	}
	request, err := h.lifecycle.Complete(c.Request.Context(), id, claims.ParticipantID, req.ClosingDocument)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Candidates godoc
// @Summary List handlers eligible for assignment
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/candidates [get]
func (h *RequestHandler) Candidates(c *gin.Context) {
	if h.assignments == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "assignment service not configured"))
		return
	}
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	if _, err := h.lifecycle.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	candidates, err := h.assignments.Candidates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil, map[string]interface{}{"policy": h.assignments.Policy()})
}

// Notifications godoc
// @Summary List the delivery trail for a request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/notifications [get]
func (h *RequestHandler) Notifications(c *gin.Context) {
	if h.notifications == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "notification service not configured"))
		return
	}
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	if _, err := h.lifecycle.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	history, err := h.notifications.History(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

func (h *RequestHandler) requestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request id"))
		return 0, false
	}
	return id, true
}
