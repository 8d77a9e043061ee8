// internal/workers/storefront/personalize-catalog/handler_test.go
package personalizecatalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront-stylist/internal/catalog"
	commonerrors "storefront-stylist/internal/common/errors"
	"storefront-stylist/internal/common/events"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/models"
	"storefront-stylist/internal/personalization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// ==========================
// Test Helper Functions
// ==========================

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func createTestConfig() *Config {
	return &Config{
		Timeout:     3 * time.Second,
		MaxProducts: 50,
	}
}

func createTestHandler(t *testing.T, baseURL string, config *Config, pub events.Publisher) *Handler {
	log := logger.NewTestLogger(t)
	client := personalization.NewClient(&personalization.Config{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}, log)
	return NewHandler(config, client, catalog.Default(), pub, log)
}

func notes(style, wardrobe string) string {
	return `"stylist_notes": {"style_match": "` + style + `", "wardrobe_compatibility": "` + wardrobe + `", "reason": "r"}`
}

// annotateServer echoes the received product list back with fixed ratings per id.
func annotateServer(t *testing.T, ratings map[int][2]string, received *personalization.Request) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req personalization.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if received != nil {
			*received = req
		}

		body := "["
		for i, p := range req.Products {
			rating, ok := ratings[p.ID]
			if !ok {
				rating = [2]string{"Low", "Low"}
			}
			if i > 0 {
				body += ","
			}
			item, _ := json.Marshal(p)
			body += string(item[:len(item)-1]) + "," + notes(rating[0], rating[1]) + "}"
		}
		body += "]"

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_RanksDefaultCatalog(t *testing.T) {
	var received personalization.Request
	server := annotateServer(t, map[int][2]string{
		3: {"High", "High"},
		1: {"High", "Medium"},
		2: {"Medium", "High"},
	}, &received)
	defer server.Close()

	pub := &recordingPublisher{}
	handler := createTestHandler(t, server.URL, createTestConfig(), pub)

	output, err := handler.Execute(context.Background(), &Input{
		UserID:       "user-1",
		StyleProfile: "  vintage, grunge ",
		Wardrobe:     "black denim",
	})
	require.NoError(t, err)

	assert.Equal(t, "vintage, grunge", received.StyleProfile)
	assert.Len(t, received.Products, 15)
	assert.Equal(t, 15, output.ItemCount)
	assert.Equal(t, []int{3, 1, 2, 4}, models.IDs(output.RankedProducts)[:4])
	assert.Equal(t, 3, output.TopProductID)
	assert.Equal(t, []string{events.TypeCatalogPersonalized}, pub.types())
}

func TestHandler_Execute_ExplicitProducts(t *testing.T) {
	var received personalization.Request
	server := annotateServer(t, map[int][2]string{
		20: {"Low", "High"},
		21: {"High", "Low"},
	}, &received)
	defer server.Close()

	handler := createTestHandler(t, server.URL, createTestConfig(), nil)
	output, err := handler.Execute(context.Background(), &Input{
		StyleProfile: "minimal",
		Wardrobe:     "white tees",
		Products: []models.CatalogItem{
			{ID: 20, Name: "a", Description: "a", Price: 1},
			{ID: 21, Name: "b", Description: "b", Price: 2},
		},
	})
	require.NoError(t, err)

	assert.Len(t, received.Products, 2)
	// equal combined score, higher style weight first
	assert.Equal(t, []int{21, 20}, models.IDs(output.RankedProducts))
}

func TestHandler_Execute_MaxProducts(t *testing.T) {
	var received personalization.Request
	server := annotateServer(t, nil, &received)
	defer server.Close()

	config := createTestConfig()
	config.MaxProducts = 5
	handler := createTestHandler(t, server.URL, config, nil)

	output, err := handler.Execute(context.Background(), &Input{StyleProfile: "a", Wardrobe: "b"})
	require.NoError(t, err)
	assert.Len(t, received.Products, 5)
	assert.Equal(t, 5, output.ItemCount)
}

func TestHandler_Execute_MaxProductsLogsDropped(t *testing.T) {
	server := annotateServer(t, nil, nil)
	defer server.Close()

	core, logs := observer.New(zap.WarnLevel)
	log := logger.NewZapAdapter(zap.New(core))
	client := personalization.NewClient(&personalization.Config{BaseURL: server.URL, Timeout: 2 * time.Second}, log)

	config := createTestConfig()
	config.MaxProducts = 5
	handler := NewHandler(config, client, catalog.Default(), nil, log)

	_, err := handler.Execute(context.Background(), &Input{UserID: "user_123", StyleProfile: "a", Wardrobe: "b"})
	require.NoError(t, err)

	truncated := logs.FilterMessage("product list truncated").All()
	require.Len(t, truncated, 1)
	fields := truncated[0].ContextMap()
	assert.EqualValues(t, 10, fields["dropped"])
	assert.EqualValues(t, 15, fields["received"])
	assert.EqualValues(t, 5, fields["maxProducts"])
}

func TestHandler_Execute_WithinMaxProductsNoWarning(t *testing.T) {
	server := annotateServer(t, nil, nil)
	defer server.Close()

	core, logs := observer.New(zap.WarnLevel)
	log := logger.NewZapAdapter(zap.New(core))
	client := personalization.NewClient(&personalization.Config{BaseURL: server.URL, Timeout: 2 * time.Second}, log)
	handler := NewHandler(createTestConfig(), client, catalog.Default(), nil, log)

	_, err := handler.Execute(context.Background(), &Input{StyleProfile: "a", Wardrobe: "b"})
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("product list truncated").Len())
}

func TestHandler_Execute_PublishFailureIgnored(t *testing.T) {
	server := annotateServer(t, nil, nil)
	defer server.Close()

	pub := &recordingPublisher{err: errors.New("broker down")}
	handler := createTestHandler(t, server.URL, createTestConfig(), pub)

	_, err := handler.Execute(context.Background(), &Input{StyleProfile: "a", Wardrobe: "b"})
	assert.NoError(t, err)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		status   int
		body     string
		delay    time.Duration
		wantCode commonerrors.ErrorCode
		wantCall bool
	}{
		{
			name:     "blank style profile",
			input:    &Input{StyleProfile: "   ", Wardrobe: "jeans"},
			wantCode: commonerrors.ErrCodeProfileIncomplete,
		},
		{
			name:     "blank wardrobe",
			input:    &Input{StyleProfile: "boho"},
			wantCode: commonerrors.ErrCodeProfileIncomplete,
		},
		{
			name:     "service error status",
			input:    &Input{StyleProfile: "a", Wardrobe: "b"},
			status:   http.StatusInternalServerError,
			body:     `{"detail":"boom"}`,
			wantCode: commonerrors.ErrCodePersonalizationFailed,
			wantCall: true,
		},
		{
			name:     "unknown rating",
			input:    &Input{StyleProfile: "a", Wardrobe: "b"},
			status:   http.StatusOK,
			body:     `[{"id": 1, "name": "x", "description": "y", "price": 1, ` + notes("Great", "Low") + `}]`,
			wantCode: commonerrors.ErrCodePersonalizationInvalidResponse,
			wantCall: true,
		},
		{
			name:     "not a list",
			input:    &Input{StyleProfile: "a", Wardrobe: "b"},
			status:   http.StatusOK,
			body:     `{"items": []}`,
			wantCode: commonerrors.ErrCodePersonalizationInvalidResponse,
			wantCall: true,
		},
		{
			name:     "slow service",
			input:    &Input{StyleProfile: "a", Wardrobe: "b"},
			status:   http.StatusOK,
			body:     `[]`,
			delay:    300 * time.Millisecond,
			wantCode: commonerrors.ErrCodePersonalizationTimeout,
			wantCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called atomic.Bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called.Store(true)
				time.Sleep(tt.delay)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			log := logger.NewTestLogger(t)
			client := personalization.NewClient(&personalization.Config{
				BaseURL: server.URL,
				Timeout: 100 * time.Millisecond,
			}, log)
			pub := &recordingPublisher{}
			handler := NewHandler(createTestConfig(), client, nil, pub, log)

			output, err := handler.Execute(context.Background(), tt.input)
			assert.Nil(t, output)
			require.Error(t, err)

			var stdErr *commonerrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantCall, called.Load())
			if tt.wantCall {
				assert.Equal(t, []string{events.TypeCatalogPersonalizationFailed}, pub.types())
			} else {
				assert.Empty(t, pub.types())
			}
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
}

type stubPersonalizer struct {
	items []models.AnnotatedItem
	err   error
}

func (s stubPersonalizer) Personalize(context.Context, personalization.Request) ([]models.AnnotatedItem, error) {
	return s.items, s.err
}

func TestHandler_Execute_InvalidRatingFromPersonalizer(t *testing.T) {
	items := []models.AnnotatedItem{{CatalogItem: models.CatalogItem{ID: 9}}}
	handler := NewHandler(createTestConfig(), stubPersonalizer{items: items}, nil, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{StyleProfile: "a", Wardrobe: "b"})

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeInvalidMatchRating, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}
