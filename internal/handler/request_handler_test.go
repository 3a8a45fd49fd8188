package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/supply-desk-api/internal/dto"
	"github.com/noah-isme/supply-desk-api/internal/middleware"
	"github.com/noah-isme/supply-desk-api/internal/models"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

type lifecycleServiceMock struct {
	submitResp   *models.Request
	submitErr    error
	assignResp   *models.Request
	assignErr    error
	claimResp    *models.Request
	claimErr     error
	startResp    *models.Request
	startErr     error
	completeResp *models.Request
	completeErr  error
	getResp      *models.Request
	getErr       error
	listResp     []models.Request
	listPages    *models.Pagination
	listErr      error

	lastFilter    models.RequestFilter
	lastAuthorID  string
	lastHandlerID string
	lastDocument  *string
	submitCalled  bool
	assignCalled  bool
	claimCalled   bool
}

func (m *lifecycleServiceMock) Submit(_ context.Context, _ dto.SubmitRequestPayload, authorID, _ string) (*models.Request, error) {
	m.submitCalled = true
	m.lastAuthorID = authorID
	return m.submitResp, m.submitErr
}

func (m *lifecycleServiceMock) Assign(_ context.Context, _ int64, handlerID string) (*models.Request, error) {
	m.assignCalled = true
	m.lastHandlerID = handlerID
	return m.assignResp, m.assignErr
}

func (m *lifecycleServiceMock) Claim(_ context.Context, _ int64, handlerID string) (*models.Request, error) {
	m.claimCalled = true
	m.lastHandlerID = handlerID
	return m.claimResp, m.claimErr
}

func (m *lifecycleServiceMock) StartWork(_ context.Context, _ int64, actorID string) (*models.Request, error) {
	m.lastHandlerID = actorID
	return m.startResp, m.startErr
}

func (m *lifecycleServiceMock) Complete(_ context.Context, _ int64, actorID string, closingDocument *string) (*models.Request, error) {
	m.lastHandlerID = actorID
	m.lastDocument = closingDocument
	return m.completeResp, m.completeErr
}

func (m *lifecycleServiceMock) Get(_ context.Context, _ int64) (*models.Request, error) {
	return m.getResp, m.getErr
}

func (m *lifecycleServiceMock) List(_ context.Context, filter models.RequestFilter) ([]models.Request, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, m.listPages, m.listErr
}

func testRequest(id int64, status models.RequestStatus) *models.Request {
	return &models.Request{ID: id, AuthorID: "a1", AuthorName: "Alex", Body: "paper", Status: status}
}

func identityContext(t *testing.T, method, target string, body []byte, participantID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if participantID != "" {
		c.Set(middleware.ContextIdentityKey, &models.IdentityClaims{ParticipantID: participantID, DisplayName: "Alex"})
	}
	return c, w
}

func TestRequestHandlerSubmit(t *testing.T) {
	mockSvc := &lifecycleServiceMock{submitResp: testRequest(1, models.StatusSubmitted)}
	handler := NewRequestHandler(mockSvc, nil, nil)

	payload, _ := json.Marshal(dto.SubmitRequestPayload{Body: "paper"})
	c, w := identityContext(t, http.MethodPost, "/requests", payload, "a1")

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"data"`)
	assert.True(t, mockSvc.submitCalled)
	assert.Equal(t, "a1", mockSvc.lastAuthorID)
}

func TestRequestHandlerSubmitWithoutIdentity(t *testing.T) {
	mockSvc := &lifecycleServiceMock{}
	handler := NewRequestHandler(mockSvc, nil, nil)

	c, w := identityContext(t, http.MethodPost, "/requests", []byte(`{"body":"paper"}`), "")

	handler.Submit(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mockSvc.submitCalled)
}

func TestRequestHandlerListParsesFilters(t *testing.T) {
	mockSvc := &lifecycleServiceMock{listResp: []models.Request{*testRequest(1, models.StatusSubmitted)}}
	handler := NewRequestHandler(mockSvc, nil, nil)

	c, w := identityContext(t, http.MethodGet, "/requests?status=submitted,assigned&handler_id=h1&limit=10&page=3", nil, "a1")

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.RequestStatus{models.StatusSubmitted, models.StatusAssigned}, mockSvc.lastFilter.Status)
	assert.Equal(t, "h1", mockSvc.lastFilter.HandlerID)
	assert.Equal(t, 10, mockSvc.lastFilter.Limit)
	assert.Equal(t, 20, mockSvc.lastFilter.Offset)
}

func TestRequestHandlerListReturnsPagination(t *testing.T) {
	mockSvc := &lifecycleServiceMock{
		listResp:  []models.Request{*testRequest(1, models.StatusSubmitted)},
		listPages: &models.Pagination{Page: 3, PageSize: 10, TotalCount: 27},
	}
	handler := NewRequestHandler(mockSvc, nil, nil)

	c, w := identityContext(t, http.MethodGet, "/requests?limit=10&page=3", nil, "a1")

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 3, envelope.Pagination.Page)
	assert.Equal(t, 10, envelope.Pagination.PageSize)
	assert.Equal(t, 27, envelope.Pagination.TotalCount)
}

func TestRequestHandlerListRejectsUnknownStatus(t *testing.T) {
	handler := NewRequestHandler(&lifecycleServiceMock{}, nil, nil)

	c, w := identityContext(t, http.MethodGet, "/requests?status=ARCHIVED", nil, "a1")

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerGetInvalidID(t *testing.T) {
	handler := NewRequestHandler(&lifecycleServiceMock{}, nil, nil)

	c, w := identityContext(t, http.MethodGet, "/requests/abc", nil, "a1")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerAssign(t *testing.T) {
	mockSvc := &lifecycleServiceMock{assignResp: testRequest(1, models.StatusAssigned)}
	handler := NewRequestHandler(mockSvc, nil, nil)

	payload, _ := json.Marshal(dto.AssignRequestPayload{HandlerID: "h1"})
	c, w := identityContext(t, http.MethodPost, "/requests/1/assign", payload, "a1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Assign(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.assignCalled)
	assert.Equal(t, "h1", mockSvc.lastHandlerID)
}

func TestRequestHandlerAssignMissingHandler(t *testing.T) {
	mockSvc := &lifecycleServiceMock{}
	handler := NewRequestHandler(mockSvc, nil, nil)

	c, w := identityContext(t, http.MethodPost, "/requests/1/assign", []byte(`{}`), "a1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Assign(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.assignCalled)
}

func TestRequestHandlerClaimUsesIdentity(t *testing.T) {
	mockSvc := &lifecycleServiceMock{claimResp: testRequest(1, models.StatusAssigned)}
	handler := NewRequestHandler(mockSvc, nil, nil)

	c, w := identityContext(t, http.MethodPost, "/requests/1/claim", nil, "h1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Claim(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.claimCalled)
	assert.Equal(t, "h1", mockSvc.lastHandlerID)
}

func TestRequestHandlerStartServiceError(t *testing.T) {
	mockSvc := &lifecycleServiceMock{startErr: appErrors.ErrForbidden}
	handler := NewRequestHandler(mockSvc, nil, nil)

	c, w := identityContext(t, http.MethodPost, "/requests/1/start", nil, "h2")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Start(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestHandlerCompleteWithDocument(t *testing.T) {
	mockSvc := &lifecycleServiceMock{completeResp: testRequest(1, models.StatusCompleted)}
	handler := NewRequestHandler(mockSvc, nil, nil)

	payload, _ := json.Marshal(dto.CompleteRequestPayload{ClosingDocument: ptr("invoice_42.pdf")})
	c, w := identityContext(t, http.MethodPost, "/requests/1/complete", payload, "h1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Complete(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastDocument)
	assert.Equal(t, "invoice_42.pdf", *mockSvc.lastDocument)
}

func TestRequestHandlerCompleteConflict(t *testing.T) {
	mockSvc := &lifecycleServiceMock{completeErr: appErrors.ErrInvalidTransition}
	handler := NewRequestHandler(mockSvc, nil, nil)

	c, w := identityContext(t, http.MethodPost, "/requests/1/complete", nil, "h1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Complete(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

type assignmentReaderMock struct {
	candidates []models.Participant
	err        error
}

func (m assignmentReaderMock) Candidates(_ context.Context) ([]models.Participant, error) {
	return m.candidates, m.err
}

func (m assignmentReaderMock) Policy() string { return "manual" }

func TestRequestHandlerCandidates(t *testing.T) {
	mockSvc := &lifecycleServiceMock{getResp: testRequest(1, models.StatusSubmitted)}
	reader := assignmentReaderMock{candidates: []models.Participant{{ID: "h1", Role: models.RoleHandler}}}
	handler := NewRequestHandler(mockSvc, reader, nil)

	c, w := identityContext(t, http.MethodGet, "/requests/1/candidates", nil, "a1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Candidates(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "h1")
	assert.Contains(t, w.Body.String(), "manual")
}

type notificationHistoryMock struct {
	history []models.Notification
}

func (m notificationHistoryMock) History(_ context.Context, _ int64) ([]models.Notification, error) {
	return m.history, nil
}

func TestRequestHandlerNotifications(t *testing.T) {
	mockSvc := &lifecycleServiceMock{getResp: testRequest(1, models.StatusAssigned)}
	history := notificationHistoryMock{history: []models.Notification{{ID: "n1", RequestID: 1, Kind: models.EventAssigned}}}
	handler := NewRequestHandler(mockSvc, nil, history)

	c, w := identityContext(t, http.MethodGet, "/requests/1/notifications", nil, "a1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Notifications(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "n1")
}

func ptr(s string) *string { return &s }
