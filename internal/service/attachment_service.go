package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/supply-desk-api/pkg/config"
)

type attachmentStore interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// AttachmentService owns background maintenance of the attachment store.
// Uploads land on disk before the request referencing them is submitted, so a
// draft the author abandons leaves a file behind; the sweep purges those once
// they outlive the configured TTL.
type AttachmentService struct {
	store  attachmentStore
	cfg    config.AttachmentsConfig
	logger *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(store attachmentStore, cfg config.AttachmentsConfig, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{store: store, cfg: cfg, logger: logger}
}

// StartCleanup boots a goroutine that purges orphaned uploads periodically.
func (s *AttachmentService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 || s.cfg.OrphanTTL <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupOrphans()
			}
		}
	}()
}

// CleanupOrphans runs a single sweep over the store.
func (s *AttachmentService) CleanupOrphans() {
	removed, err := s.store.CleanupOlderThan(s.cfg.OrphanTTL)
	if err != nil {
		s.logger.Sugar().Warnw("attachment cleanup failed", "error", err)
		return
	}
	if len(removed) > 0 {
		s.logger.Sugar().Infow("purged orphaned attachments", "count", len(removed))
	}
}
