// Package events publishes storefront domain events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeProfileSaved                 = "profile.saved"
	TypeCatalogPersonalized          = "catalog.personalized"
	TypeCatalogPersonalizationFailed = "catalog.personalization_failed"
)

type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	UserID     string                 `json:"user_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

func New(eventType, userID string, data map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
