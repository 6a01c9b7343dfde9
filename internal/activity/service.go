package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/mediboard/mediboard/internal/shared"
)

// FetcherPort defines the upstream operations the service depends on.
type FetcherPort interface {
	ListActivity(ctx context.Context) ([]Record, error)
	EnrichUsers(ctx context.Context, records []Record) []Record
	DeleteAllActivity(ctx context.Context) error
}

// Service coordinates snapshot fetching, enrichment and the delete-all flow.
type Service struct {
	fetcher FetcherPort
	cache   *Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds Service instance.
func NewService(fetcher FetcherPort, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, cache: cache, logger: logger, now: time.Now}
}

// Snapshot returns the current activity snapshot, serving from cache when
// warm. On upstream failure the last-good snapshot is returned alongside
// shared.ErrRemoteFailure so callers can keep rendering stale data.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, err := s.cache.Fetch(ctx, s.load)
	if err == nil {
		return snap, nil
	}
	s.logger.Warn("activity snapshot fetch", slog.Any("error", err))
	if last, ok := s.cache.LastGood(ctx); ok {
		return last, shared.ErrRemoteFailure
	}
	return Snapshot{}, shared.ErrRemoteFailure
}

// Refresh bypasses the cached snapshot and fetches a fresh one.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, shared.ErrRemoteFailure
	}
	// Re-populate through the cache so the refreshed copy becomes last-good.
	return s.cache.Fetch(ctx, func(context.Context) (Snapshot, error) {
		return snap, nil
	})
}

// DeleteAll removes every activity record upstream. The operation is
// all-or-nothing from this side; on success the snapshot version is bumped so
// the next view sees the emptied list.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.fetcher.DeleteAllActivity(ctx); err != nil {
		return shared.ErrRemoteFailure
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("activity cache bump", slog.Any("error", err))
	}
	return nil
}

func (s *Service) load(ctx context.Context) (Snapshot, error) {
	records, err := s.fetcher.ListActivity(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	records = s.fetcher.EnrichUsers(ctx, records)
	return Snapshot{Records: records, FetchedAt: s.now().UTC()}, nil
}
