// Package personalization talks to the remote stylist service that annotates
// catalog items with match ratings.
package personalization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	commonhttp "storefront-stylist/internal/common/http"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/metrics"
	"storefront-stylist/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	personalizePath = "/personalize-with-wardrobe"
	healthPath      = "/health"
)

var (
	ErrServiceStatus      = errors.New("personalization service returned an error status")
	ErrServiceUnavailable = errors.New("personalization service unavailable")
	ErrServiceTimeout     = errors.New("personalization service timed out")
	ErrInvalidResponse    = errors.New("personalization service returned an invalid response")
)

// Request is the wire body of a personalization call.
type Request struct {
	StyleProfile string               `json:"style_profile"`
	Wardrobe     string               `json:"wardrobe"`
	Products     []models.CatalogItem `json:"product_list"`
}

type HealthStatus struct {
	Status           string `json:"status"`
	ModelInitialized bool   `json:"model_initialized"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	config *Config
	http   *commonhttp.Client
	tracer trace.Tracer
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return NewClientWithHTTP(config, commonhttp.NewClient(0), log)
}

// NewClientWithHTTP is NewClient with a caller supplied transport.
func NewClientWithHTTP(config *Config, hc *commonhttp.Client, log logger.Logger) *Client {
	return &Client{
		config: config,
		http:   hc,
		tracer: otel.Tracer("storefront-stylist/personalization"),
		logger: log.WithFields(map[string]interface{}{"component": "personalization-client"}),
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

// Personalize sends the profile, wardrobe and catalog and returns the
// annotated items in service order. There is no retry.
func (c *Client) Personalize(ctx context.Context, req Request) (items []models.AnnotatedItem, err error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "personalization.Personalize",
		trace.WithAttributes(attribute.Int("catalog.size", len(req.Products))))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.PersonalizationDuration.Observe(time.Since(start).Seconds())
		metrics.PersonalizationRequests.WithLabelValues(outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	resp, err := c.http.PostJSON(ctx, c.url(personalizePath), req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	span.SetAttributes(
		attribute.String("request.id", resp.RequestID),
		attribute.Int("http.status_code", resp.StatusCode),
	)

	if !resp.OK() {
		c.logger.Warn("personalization service error status", map[string]interface{}{
			"status":    resp.StatusCode,
			"requestId": resp.RequestID,
		})
		return nil, fmt.Errorf("%w: status %d", ErrServiceStatus, resp.StatusCode)
	}

	result := compiledResponseSchema.ValidateDocument(resp.Body)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(result.GetErrorMessages(), "; "))
	}

	if err = json.Unmarshal(resp.Body, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.logger.Info("personalization completed", map[string]interface{}{
		"requestId":  resp.RequestID,
		"itemCount":  len(items),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return items, nil
}

// Health calls GET /health; any 2xx counts as healthy.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := c.http.Get(ctx, c.url(healthPath))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", ErrServiceStatus, resp.StatusCode)
	}

	status := &HealthStatus{Status: "healthy"}
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, status); err != nil {
			c.logger.Debug("health body not JSON", map[string]interface{}{"error": err.Error()})
		}
	}
	return status, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrServiceTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrServiceTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, ErrInvalidResponse):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
