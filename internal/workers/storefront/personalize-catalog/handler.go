// internal/workers/storefront/personalize-catalog/handler.go
package personalizecatalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-stylist/internal/catalog"
	commonerrors "storefront-stylist/internal/common/errors"
	"storefront-stylist/internal/common/events"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/metrics"
	"storefront-stylist/internal/models"
	"storefront-stylist/internal/personalization"
	"storefront-stylist/internal/ranking"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "personalize-catalog"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

// Personalizer annotates catalog items against a style profile and wardrobe.
type Personalizer interface {
	Personalize(ctx context.Context, req personalization.Request) ([]models.AnnotatedItem, error)
}

type Handler struct {
	config       *Config
	personalizer Personalizer
	catalog      catalog.Source
	publisher    events.Publisher
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, personalizer Personalizer, source catalog.Source, publisher events.Publisher, log logger.Logger) *Handler {
	if source == nil {
		source = catalog.Default()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		personalizer: personalizer,
		catalog:      source,
		publisher:    publisher,
		logger:       l,
		errorHandler: commonerrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, commonerrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	styleProfile := strings.TrimSpace(input.StyleProfile)
	wardrobe := strings.TrimSpace(input.Wardrobe)
	if styleProfile == "" || wardrobe == "" {
		return nil, commonerrors.NewProfileIncompleteError("styleProfile and wardrobe are both required")
	}

	products := input.Products
	if len(products) == 0 {
		products = h.catalog.Products()
	}
	if h.config.MaxProducts > 0 && len(products) > h.config.MaxProducts {
		h.logger.Warn("product list truncated", map[string]interface{}{
			"userId":      input.UserID,
			"received":    len(products),
			"maxProducts": h.config.MaxProducts,
			"dropped":     len(products) - h.config.MaxProducts,
		})
		products = products[:h.config.MaxProducts]
	}

	start := time.Now()
	annotated, err := h.personalizer.Personalize(ctx, personalization.Request{
		StyleProfile: styleProfile,
		Wardrobe:     wardrobe,
		Products:     products,
	})
	if err != nil {
		h.publishFailure(ctx, input.UserID, err)
		return nil, classify(err)
	}

	ranked, err := ranking.Rank(annotated)
	if err != nil {
		h.publishFailure(ctx, input.UserID, err)
		return nil, commonerrors.NewInvalidMatchRatingError(err)
	}
	metrics.RankedItems.Observe(float64(len(ranked)))

	output := &Output{
		RankedProducts: ranked,
		ItemCount:      len(ranked),
	}
	if len(ranked) > 0 {
		output.TopProductID = ranked[0].ID
	}

	h.logger.Info("catalog personalized", map[string]interface{}{
		"userId":       input.UserID,
		"productCount": len(products),
		"itemCount":    len(ranked),
		"topProductId": output.TopProductID,
		"durationMs":   time.Since(start).Milliseconds(),
	})

	h.publish(ctx, events.New(events.TypeCatalogPersonalized, input.UserID, map[string]interface{}{
		"item_count":  output.ItemCount,
		"top_item_id": output.TopProductID,
	}))

	return output, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, personalization.ErrServiceTimeout):
		return commonerrors.NewPersonalizationTimeoutError(err)
	case errors.Is(err, models.ErrInvalidMatchRating):
		return commonerrors.NewInvalidMatchRatingError(err)
	case errors.Is(err, personalization.ErrInvalidResponse):
		return commonerrors.NewPersonalizationInvalidResponseError(err)
	default:
		return commonerrors.NewPersonalizationFailedError(err)
	}
}

func (h *Handler) publishFailure(ctx context.Context, userID string, err error) {
	h.publish(ctx, events.New(events.TypeCatalogPersonalizationFailed, userID, map[string]interface{}{
		"error": err.Error(),
	}))
}

func (h *Handler) publish(ctx context.Context, event events.Event) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish event", map[string]interface{}{
			"eventType": event.Type,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(commonerrors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
