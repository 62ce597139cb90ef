package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

// ErrDegraded signals that the primary store failed and the write landed in
// the local cache instead. The mutation is safe; the remote copy is stale.
var ErrDegraded = errors.New("primary store unavailable, saved to local cache")

// FallbackStore writes to a primary store and falls back to a local cache when
// the primary is unreachable. Loads prefer the primary.
type FallbackStore struct {
	primary Store
	cache   Store
	logger  *zap.Logger
}

// NewFallbackStore composes a primary store with a best-effort local cache.
func NewFallbackStore(primary, cache Store, logger *zap.Logger) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{primary: primary, cache: cache, logger: logger}
}

// Load reads from the primary store, falling back to the cache when the
// primary cannot be reached.
func (s *FallbackStore) Load(ctx context.Context) (models.FarmState, error) {
	state, err := s.primary.Load(ctx)
	if err == nil {
		return state, nil
	}

	s.logger.Warn("primary store load failed, trying local cache", zap.Error(err))

	cached, cacheErr := s.cache.Load(ctx)
	if cacheErr != nil {
		return models.FarmState{}, fmt.Errorf("load farm state: primary: %w, cache: %s", err, cacheErr)
	}
	return cached, nil
}

// Save writes to the primary store and mirrors into the cache. When the
// primary fails but the cache succeeds, the pending mutation is preserved and
// ErrDegraded is returned so callers can surface a recoverable warning.
func (s *FallbackStore) Save(ctx context.Context, state models.FarmState) error {
	primaryErr := s.primary.Save(ctx, state)

	if cacheErr := s.cache.Save(ctx, state); cacheErr != nil {
		s.logger.Warn("local cache save failed", zap.Error(cacheErr))
		if primaryErr != nil {
			return fmt.Errorf("save farm state: primary: %w, cache: %s", primaryErr, cacheErr)
		}
		return nil
	}

	if primaryErr != nil {
		s.logger.Warn("primary store save failed, state cached locally", zap.Error(primaryErr))
		return fmt.Errorf("%w: %s", ErrDegraded, primaryErr)
	}
	return nil
}
