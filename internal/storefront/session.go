// Package storefront holds the per-user widget state: inputs, the current
// product view and the personalization request lifecycle.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"storefront-stylist/internal/catalog"
	"storefront-stylist/internal/common/events"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/metrics"
	"storefront-stylist/internal/models"
	"storefront-stylist/internal/personalization"
	"storefront-stylist/internal/profile"
	"storefront-stylist/internal/ranking"
)

// User visible alerts.
const (
	AlertIncompleteInput   = "Please fill in both your style profile and wardrobe."
	AlertSaveFailed        = "Failed to save profile. Please try again."
	AlertPersonalizeFailed = "Failed to personalize. Please check your backend connection and try again."
)

var (
	ErrIncompleteInput   = errors.New("style profile and wardrobe are both required")
	ErrSaveFailed        = errors.New("saving profile failed")
	ErrPersonalizeFailed = errors.New("personalization failed")
)

// Personalizer is the remote annotation call.
type Personalizer interface {
	Personalize(ctx context.Context, req personalization.Request) ([]models.AnnotatedItem, error)
}

type Deps struct {
	Store        profile.Store
	Personalizer Personalizer
	Catalog      catalog.Source
	Publisher    events.Publisher
	Logger       logger.Logger
}

type Session struct {
	userID string
	deps   Deps
	logger logger.Logger

	mu           sync.Mutex
	styleProfile string
	wardrobe     string
	ranked       []models.AnnotatedItem
	lifecycle    Lifecycle
	alert        string
}

func NewSession(userID string, deps Deps) *Session {
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	return &Session{
		userID: userID,
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"userId": userID}),
	}
}

func (s *Session) UserID() string { return s.userID }

// View snapshots the current state for Render.
func (s *Session) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() ViewState {
	var ranked []models.AnnotatedItem
	if s.ranked != nil {
		ranked = make([]models.AnnotatedItem, len(s.ranked))
		copy(ranked, s.ranked)
	}
	return ViewState{
		Catalog:      s.deps.Catalog.Products(),
		Ranked:       ranked,
		Request:      s.lifecycle.State(),
		StyleProfile: s.styleProfile,
		Wardrobe:     s.wardrobe,
		Alert:        s.alert,
	}
}

// TakeView snapshots the state and clears the pending alert, so each alert
// is shown once.
func (s *Session) TakeView() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.viewLocked()
	s.alert = ""
	return v
}

// Load is the page-load flow: show the unsorted catalog, restore saved
// inputs and personalize when both are present.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if !s.lifecycle.State().Loading() {
		s.ranked = nil
	}
	s.mu.Unlock()

	saved, err := s.deps.Store.Load(ctx, s.userID)
	if err != nil {
		if !errors.Is(err, profile.ErrProfileNotFound) {
			s.logger.Error("failed to load profile", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	s.mu.Lock()
	s.styleProfile = saved.StyleProfile
	s.wardrobe = saved.Wardrobe
	s.mu.Unlock()

	if !saved.Complete() {
		return nil
	}
	return s.personalize(ctx, saved.StyleProfile, saved.Wardrobe)
}

// Submit is the control-click flow: validate, save, then personalize. The
// lifecycle is reserved before the save, so a rejected submit stores nothing.
func (s *Session) Submit(ctx context.Context, styleProfile, wardrobe string) error {
	styleProfile = strings.TrimSpace(styleProfile)
	wardrobe = strings.TrimSpace(wardrobe)

	s.mu.Lock()
	if !s.lifecycle.State().ControlEnabled() {
		s.mu.Unlock()
		return ErrRequestInFlight
	}
	s.styleProfile = styleProfile
	s.wardrobe = wardrobe
	if styleProfile == "" || wardrobe == "" {
		s.alert = AlertIncompleteInput
		s.mu.Unlock()
		return ErrIncompleteInput
	}
	if err := s.lifecycle.Begin(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	p := &models.StyleProfile{UserID: s.userID, StyleProfile: styleProfile, Wardrobe: wardrobe}
	if err := s.deps.Store.Save(ctx, p); err != nil {
		s.logger.Error("failed to save profile", map[string]interface{}{"error": err.Error()})
		s.mu.Lock()
		_ = s.lifecycle.Abort()
		s.alert = AlertSaveFailed
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	s.publish(ctx, events.New(events.TypeProfileSaved, s.userID, map[string]interface{}{
		"updated_at": p.UpdatedAt,
	}))

	return s.run(ctx, styleProfile, wardrobe)
}

func (s *Session) personalize(ctx context.Context, styleProfile, wardrobe string) error {
	s.mu.Lock()
	if err := s.lifecycle.Begin(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.run(ctx, styleProfile, wardrobe)
}

// run sends the request for a lifecycle already in InFlight and settles it.
func (s *Session) run(ctx context.Context, styleProfile, wardrobe string) error {
	s.mu.Lock()
	products := s.deps.Catalog.Products()
	s.mu.Unlock()

	ranked, err := s.fetchRanked(ctx, personalization.Request{
		StyleProfile: styleProfile,
		Wardrobe:     wardrobe,
		Products:     products,
	})

	s.mu.Lock()
	if err != nil {
		s.alert = AlertPersonalizeFailed
		_ = s.lifecycle.Fail()
	} else {
		s.ranked = ranked
		_ = s.lifecycle.Succeed()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("personalization failed", map[string]interface{}{"error": err.Error()})
		s.publish(ctx, events.New(events.TypeCatalogPersonalizationFailed, s.userID, map[string]interface{}{
			"error": err.Error(),
		}))
		return fmt.Errorf("%w: %v", ErrPersonalizeFailed, err)
	}

	data := map[string]interface{}{"item_count": len(ranked)}
	if len(ranked) > 0 {
		data["top_item_id"] = ranked[0].ID
	}
	s.publish(ctx, events.New(events.TypeCatalogPersonalized, s.userID, data))
	return nil
}

func (s *Session) fetchRanked(ctx context.Context, req personalization.Request) ([]models.AnnotatedItem, error) {
	annotated, err := s.deps.Personalizer.Personalize(ctx, req)
	if err != nil {
		return nil, err
	}
	ranked, err := ranking.Rank(annotated)
	if err != nil {
		return nil, err
	}
	if ranked == nil {
		ranked = []models.AnnotatedItem{}
	}
	metrics.RankedItems.Observe(float64(len(ranked)))
	return ranked, nil
}

func (s *Session) publish(ctx context.Context, event events.Event) {
	if err := s.deps.Publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", map[string]interface{}{
			"eventType": event.Type,
			"error":     err.Error(),
		})
	}
}

// Sessions hands out one Session per user id.
type Sessions struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessions(deps Deps) *Sessions {
	return &Sessions{deps: deps, sessions: make(map[string]*Session)}
}

// Get returns the user's session, creating it on first use. created is true
// for a new session, which still needs Load.
func (m *Sessions) Get(userID string) (session *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, false
	}
	s := NewSession(userID, m.deps)
	m.sessions[userID] = s
	return s, true
}
