package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/supply-desk-api/internal/dto"
	"github.com/noah-isme/supply-desk-api/internal/models"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

const handlerRosterCacheKey = "directory:handlers"

type participantStore interface {
	Upsert(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id string) (*models.Participant, error)
	List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error)
}

// rosterCache is the subset of Redis used for the handler roster.
type rosterCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisRosterCache adapts a go-redis client to the rosterCache interface.
type RedisRosterCache struct {
	client *redis.Client
}

// NewRedisRosterCache wraps the provided client.
func NewRedisRosterCache(client *redis.Client) *RedisRosterCache {
	return &RedisRosterCache{client: client}
}

func (c *RedisRosterCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RedisRosterCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisRosterCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DirectoryService maintains the participant directory: who is known, what
// role they hold, and the handler roster offered to the assignment selector.
type DirectoryService struct {
	repo      participantStore
	cache     rosterCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectoryService constructs the service. The cache is optional.
func NewDirectoryService(repo participantStore, cache rosterCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	svc := &DirectoryService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
	svc.validator.RegisterValidation("participant_role", func(fl validator.FieldLevel) bool { //nolint:errcheck
		return models.ParticipantRole(fl.Field().String()).Valid()
	})
	return svc
}

// Register enrolls a participant. Repeat registrations keep the original role
// and tag; only the display name is refreshed.
func (s *DirectoryService) Register(ctx context.Context, req dto.RegisterParticipantRequest) (*models.Participant, error) {
	req.ID = strings.TrimSpace(req.ID)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id, display_name and a role of AUTHOR or HANDLER are required")
	}
	id := req.ID
	name := req.DisplayName

	participant := &models.Participant{
		ID:          id,
		DisplayName: name,
		Role:        req.Role,
		Tag:         req.Tag,
	}
	if err := s.repo.Upsert(ctx, participant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to register participant")
	}
	s.invalidateRoster(ctx)

	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return participant, nil
	}
	return stored, nil
}

// EnsureAuthor returns the directory entry for an author, registering them on
// first contact. An existing entry is returned unchanged even when its role
// differs; roles are not revocable.
func (s *DirectoryService) EnsureAuthor(ctx context.Context, id, displayName string) (*models.Participant, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load participant")
	}

	participant := &models.Participant{
		ID:          id,
		DisplayName: displayName,
		Role:        models.RoleAuthor,
	}
	if err := s.repo.Upsert(ctx, participant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to register author")
	}
	return participant, nil
}

// Get returns a directory entry.
func (s *DirectoryService) Get(ctx context.Context, id string) (*models.Participant, error) {
	participant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load participant")
	}
	return participant, nil
}

// List returns directory entries matching the filter.
func (s *DirectoryService) List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error) {
	participants, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list participants")
	}
	return participants, nil
}

// Handlers returns the handler roster, served from cache when warm.
func (s *DirectoryService) Handlers(ctx context.Context) ([]models.Participant, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, handlerRosterCacheKey); err == nil && raw != "" {
			var cached []models.Participant
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	role := models.RoleHandler
	handlers, err := s.repo.List(ctx, models.ParticipantFilter{Role: &role})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list handlers")
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(handlers); err == nil {
			if err := s.cache.Set(ctx, handlerRosterCacheKey, string(encoded), s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache handler roster", zap.Error(err))
			}
		}
	}
	return handlers, nil
}

func (s *DirectoryService) invalidateRoster(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, handlerRosterCacheKey); err != nil {
		s.logger.Warn("failed to invalidate handler roster cache", zap.Error(err))
	}
}
