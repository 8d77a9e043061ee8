package profile

import (
	"context"
	"errors"

	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/models"
)

type evicter interface {
	Delete(ctx context.Context, userID string) error
}

// CachedStore reads through the cache to the primary store. Cache failures
// are logged and never fail the operation.
type CachedStore struct {
	primary Store
	cache   Store
	logger  logger.Logger
}

func NewCachedStore(primary, cache Store, log logger.Logger) *CachedStore {
	return &CachedStore{
		primary: primary,
		cache:   cache,
		logger:  log.WithFields(map[string]interface{}{"component": "profile-store"}),
	}
}

func (s *CachedStore) Load(ctx context.Context, userID string) (profile *models.StyleProfile, err error) {
	defer func() { observe("cached", "load", err) }()

	profile, err = s.cache.Load(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		s.logger.Warn("profile cache read failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	profile, err = s.primary.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Save(ctx, profile); cacheErr != nil {
		s.logger.Warn("profile cache fill failed", map[string]interface{}{
			"userId": userID,
			"error":  cacheErr.Error(),
		})
	}
	return profile, nil
}

func (s *CachedStore) Save(ctx context.Context, profile *models.StyleProfile) (err error) {
	defer func() { observe("cached", "save", err) }()

	if err = s.primary.Save(ctx, profile); err != nil {
		return err
	}

	if cacheErr := s.cache.Save(ctx, profile); cacheErr != nil {
		s.logger.Warn("profile cache refresh failed", map[string]interface{}{
			"userId": profile.UserID,
			"error":  cacheErr.Error(),
		})
		s.evict(ctx, profile.UserID)
	}
	return nil
}

// evict drops a cache entry the refresh could not overwrite so the next Load
// reads the primary instead of the previous profile.
func (s *CachedStore) evict(ctx context.Context, userID string) {
	e, ok := s.cache.(evicter)
	if !ok {
		return
	}
	if err := e.Delete(ctx, userID); err != nil {
		s.logger.Warn("profile cache eviction failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}
}
