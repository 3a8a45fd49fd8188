package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/supply-desk-api/internal/dto"
	"github.com/noah-isme/supply-desk-api/internal/models"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id int64) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
	SetHandler(ctx context.Context, id int64, handlerID string, at time.Time) error
	ClaimHandler(ctx context.Context, id int64, handlerID string, at time.Time) error
	MarkInProgress(ctx context.Context, id int64, handlerID string, at time.Time) error
	MarkCompleted(ctx context.Context, id int64, handlerID string, closingDocument *string, at time.Time) error
}

type directory interface {
	EnsureAuthor(ctx context.Context, id, displayName string) (*models.Participant, error)
	Get(ctx context.Context, id string) (*models.Participant, error)
}

// notifier receives lifecycle events once the transition is durable. Failures
// are the notifier's problem; the engine never un-commits a transition.
type notifier interface {
	Notify(ctx context.Context, event models.Event) error
}

// proposer optionally picks a handler for a fresh submission (automatic
// assignment policies). A nil proposal means manual selection.
type proposer interface {
	Propose(ctx context.Context) (*models.Participant, error)
}

type transitionObserver interface {
	RecordTransition(kind models.EventKind)
}

// LifecycleService owns the request state machine: SUBMITTED → ASSIGNED →
// IN_PROGRESS → COMPLETED. All request mutations go through here; the engine
// keeps no state of its own between calls beyond the durable store.
type LifecycleService struct {
	requests       requestStore
	directory      directory
	notifier       notifier
	proposer       proposer
	metrics        transitionObserver
	broadcastClaim bool
	logger         *zap.Logger
}

// LifecycleOption configures the service.
type LifecycleOption func(*LifecycleService)

// WithProposer enables automatic assignment on submission.
func WithProposer(p proposer) LifecycleOption {
	return func(s *LifecycleService) { s.proposer = p }
}

// WithBroadcastClaim enables the claim transition (first claimant wins).
func WithBroadcastClaim(enabled bool) LifecycleOption {
	return func(s *LifecycleService) { s.broadcastClaim = enabled }
}

// WithTransitionObserver wires transition metrics.
func WithTransitionObserver(m transitionObserver) LifecycleOption {
	return func(s *LifecycleService) { s.metrics = m }
}

// NewLifecycleService constructs the engine.
func NewLifecycleService(requests requestStore, dir directory, notif notifier, logger *zap.Logger, opts ...LifecycleOption) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LifecycleService{
		requests:  requests,
		directory: dir,
		notifier:  notif,
		logger:    logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Submit creates a request in SUBMITTED status, auto-registering the author on
// first contact, and returns it with the allocated id.
func (s *LifecycleService) Submit(ctx context.Context, req dto.SubmitRequestPayload, authorID, authorName string) (*models.Request, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" && req.Attachment == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body or attachment is required")
	}

	var deadline *time.Time
	if req.Deadline != "" {
		parsed, err := time.Parse(models.DeadlineLayout, req.Deadline)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "deadline must use the YYYY-MM-DD format")
		}
		deadline = &parsed
	}

	author, err := s.directory.EnsureAuthor(ctx, authorID, authorName)
	if err != nil {
		return nil, err
	}

	tag := req.Tag
	if tag == nil {
		tag = author.Tag
	}

	request := &models.Request{
		AuthorID:   author.ID,
		AuthorName: author.DisplayName,
		Tag:        tag,
		Body:       body,
		Attachment: req.Attachment,
		Deadline:   deadline,
		Status:     models.StatusSubmitted,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist request")
	}
	s.observe(models.EventSubmitted)
	s.logger.Info("request submitted",
		zap.Int64("request_id", request.ID),
		zap.String("author_id", request.AuthorID),
	)

	if s.proposer != nil {
		if assigned, err := s.autoAssign(ctx, request); err != nil {
			s.logger.Warn("automatic assignment failed, request stays submitted",
				zap.Int64("request_id", request.ID), zap.Error(err))
		} else if assigned != nil {
			return assigned, nil
		}
	}
	return request, nil
}

func (s *LifecycleService) autoAssign(ctx context.Context, request *models.Request) (*models.Request, error) {
	proposal, err := s.proposer.Propose(ctx)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, nil
	}
	return s.Assign(ctx, request.ID, proposal.ID)
}

// Assign moves a SUBMITTED request to ASSIGNED and notifies the handler.
func (s *LifecycleService) Assign(ctx context.Context, id int64, handlerID string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	handler, err := s.directory.Get(ctx, handlerID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "handler is not registered in the directory")
		}
		return nil, err
	}
	if handler.Role != models.RoleHandler {
		return nil, appErrors.Clone(appErrors.ErrValidation, "participant cannot take assignments")
	}
	if request.Status != models.StatusSubmitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request is already assigned")
	}

	now := time.Now().UTC()
	if err := s.requests.SetHandler(ctx, id, handler.ID, now); err != nil {
		return nil, s.transitionError(ctx, id, err)
	}
	request.HandlerID = &handler.ID
	request.Status = models.StatusAssigned
	request.StatusChangedAt = now
	s.observe(models.EventAssigned)

	s.emit(ctx, models.Event{
		RequestID:   request.ID,
		Kind:        models.EventAssigned,
		RecipientID: handler.ID,
		Body:        request.Body,
		HandlerName: handler.DisplayName,
		Attachment:  request.Attachment,
	})
	return request, nil
}

// Claim lets any handler take an unowned SUBMITTED request; the first
// compare-and-swap wins and every later claim is rejected.
func (s *LifecycleService) Claim(ctx context.Context, id int64, handlerID string) (*models.Request, error) {
	if !s.broadcastClaim {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "broadcast claim is disabled")
	}

	handler, err := s.directory.Get(ctx, handlerID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "handler is not registered in the directory")
		}
		return nil, err
	}
	if handler.Role != models.RoleHandler {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only handlers may claim requests")
	}

	now := time.Now().UTC()
	if err := s.requests.ClaimHandler(ctx, id, handler.ID, now); err != nil {
		return nil, s.transitionError(ctx, id, err)
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.observe(models.EventClaimed)

	s.emit(ctx, models.Event{
		RequestID:   request.ID,
		Kind:        models.EventClaimed,
		RecipientID: request.AuthorID,
		Body:        request.Body,
		HandlerName: handler.DisplayName,
	})
	return request, nil
}

// StartWork moves an ASSIGNED request to IN_PROGRESS. Only the recorded
// handler may do this, whatever the current status.
func (s *LifecycleService) StartWork(ctx context.Context, id int64, actorID string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.HandlerID == nil || *request.HandlerID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned handler may start work")
	}
	if request.Status != models.StatusAssigned {
		return nil, appErrors.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := s.requests.MarkInProgress(ctx, id, actorID, now); err != nil {
		return nil, s.transitionError(ctx, id, err)
	}
	request.Status = models.StatusInProgress
	request.StatusChangedAt = now
	s.observe(models.EventInProgress)

	s.emit(ctx, models.Event{
		RequestID:   request.ID,
		Kind:        models.EventInProgress,
		RecipientID: request.AuthorID,
		HandlerName: s.handlerName(ctx, actorID),
	})
	return request, nil
}

// Complete moves an IN_PROGRESS request to the terminal COMPLETED status,
// optionally recording the closing document. Repeat completion is rejected and
// the stored document stays untouched.
func (s *LifecycleService) Complete(ctx context.Context, id int64, actorID string, closingDocument *string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.HandlerID == nil || *request.HandlerID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned handler may complete the request")
	}
	if request.Status != models.StatusInProgress {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request is not in progress")
	}

	now := time.Now().UTC()
	if err := s.requests.MarkCompleted(ctx, id, actorID, closingDocument, now); err != nil {
		return nil, s.transitionError(ctx, id, err)
	}
	request.Status = models.StatusCompleted
	request.StatusChangedAt = now
	request.ClosingDocument = closingDocument
	s.observe(models.EventCompleted)

	s.emit(ctx, models.Event{
		RequestID:   request.ID,
		Kind:        models.EventCompleted,
		RecipientID: request.AuthorID,
		HandlerName: s.handlerName(ctx, actorID),
		Attachment:  closingDocument,
	})
	return request, nil
}

// Get returns one request from the ledger.
func (s *LifecycleService) Get(ctx context.Context, id int64) (*models.Request, error) {
	return s.load(ctx, id)
}

// List returns ledger rows matching the filter plus pagination metadata for
// the applied window. The page size is normalized here so the metadata always
// reflects the limit the store actually used.
func (s *LifecycleService) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, *models.Pagination, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list requests")
	}
	pagination := &models.Pagination{
		Page:       filter.Offset/filter.Limit + 1,
		PageSize:   filter.Limit,
		TotalCount: total,
	}
	return requests, pagination, nil
}

func (s *LifecycleService) load(ctx context.Context, id int64) (*models.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load request")
	}
	return request, nil
}

// transitionError distinguishes a vanished row from a lost transition race.
func (s *LifecycleService) transitionError(ctx context.Context, id int64, err error) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist transition")
	}
	if _, loadErr := s.requests.GetByID(ctx, id); loadErr != nil {
		if errors.Is(loadErr, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
	}
	return appErrors.ErrInvalidTransition
}

// emit hands the event to the notification router. Persistence already
// succeeded at this point, so delivery problems only get logged.
func (s *LifecycleService) emit(ctx context.Context, event models.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("failed to route lifecycle notification",
			zap.Int64("request_id", event.RequestID),
			zap.String("kind", string(event.Kind)),
			zap.Error(err),
		)
	}
}

func (s *LifecycleService) handlerName(ctx context.Context, handlerID string) string {
	handler, err := s.directory.Get(ctx, handlerID)
	if err != nil {
		return handlerID
	}
	return handler.DisplayName
}

func (s *LifecycleService) observe(kind models.EventKind) {
	if s.metrics != nil {
		s.metrics.RecordTransition(kind)
	}
}
