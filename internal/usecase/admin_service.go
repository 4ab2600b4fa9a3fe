package usecase

import (
	"context"
	"fmt"

	"github.com/cbaclube/portal/internal/platform/logging"
)

// AdminService groups the maintenance passthroughs. Clearing the cache hits
// the script first, then drops the local feed cache so the next projection
// sees fresh rows.
type AdminService struct {
	backend AdminBackend
	feed    FeedFetcher
	logger  *logging.Logger
}

func NewAdminService(backend AdminBackend, feed FeedFetcher, logger *logging.Logger) *AdminService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminService{backend: backend, feed: feed, logger: logger}
}

func (s *AdminService) ClearCache(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "AdminService.ClearCache")
	defer span.End()

	if err := s.backend.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear backend cache: %w", err)
	}
	if s.feed != nil {
		s.feed.Invalidate(ctx)
	}
	s.logger.InfoContext(ctx, "caches cleared")
	return nil
}
