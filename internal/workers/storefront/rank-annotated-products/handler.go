// internal/workers/storefront/rank-annotated-products/handler.go
package rankannotatedproducts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonerrors "storefront-stylist/internal/common/errors"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/metrics"
	"storefront-stylist/internal/models"
	"storefront-stylist/internal/ranking"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-annotated-products"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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
		if errors.Is(err, models.ErrInvalidMatchRating) {
			h.failJob(ctx, client, job, commonerrors.NewInvalidMatchRatingError(err))
			return
		}
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()

	scored, err := ranking.Score(input.Products)
	if err != nil {
		return nil, commonerrors.NewInvalidMatchRatingError(err)
	}

	output := &Output{
		RankedProducts: make([]models.AnnotatedItem, len(scored)),
		Scores:         make([]ProductScore, len(scored)),
	}
	for i, s := range scored {
		output.RankedProducts[i] = s.Item
		output.Scores[i] = ProductScore{
			ID:            s.Item.ID,
			CombinedScore: s.CombinedScore,
			StyleWeight:   s.StyleWeight,
		}
	}
	metrics.RankedItems.Observe(float64(len(scored)))

	h.logger.Info("ranking completed", map[string]interface{}{
		"itemCount":  len(scored),
		"topItemIds": firstIDs(output.RankedProducts, 3),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return output, nil
}

func firstIDs(items []models.AnnotatedItem, n int) []int {
	if len(items) < n {
		n = len(items)
	}
	return models.IDs(items[:n])
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
