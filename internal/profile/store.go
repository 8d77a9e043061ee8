// Package profile persists the per-user style profile and wardrobe text.
package profile

import (
	"context"
	"errors"

	"storefront-stylist/internal/common/metrics"
	"storefront-stylist/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrMissingUserID   = errors.New("profile has no user id")
)

type Store interface {
	Load(ctx context.Context, userID string) (*models.StyleProfile, error)
	Save(ctx context.Context, profile *models.StyleProfile) error
}

func observe(store, op string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, ErrProfileNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.ProfileStoreOperations.WithLabelValues(store, op, outcome).Inc()
}
