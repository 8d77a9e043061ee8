// internal/workers/profile/save-style-profile/handler.go
package savestyleprofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonerrors "storefront-stylist/internal/common/errors"
	"storefront-stylist/internal/common/events"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/metrics"
	"storefront-stylist/internal/common/validation"
	"storefront-stylist/internal/models"
	"storefront-stylist/internal/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "save-style-profile"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config       *Config
	store        profile.Store
	publisher    events.Publisher
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, store profile.Store, publisher events.Publisher, log logger.Logger) *Handler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
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

	if result := validation.Struct(input); !result.Valid {
		return nil, commonerrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	p := &models.StyleProfile{
		UserID:       strings.TrimSpace(input.UserID),
		StyleProfile: strings.TrimSpace(input.StyleProfile),
		Wardrobe:     strings.TrimSpace(input.Wardrobe),
	}
	if p.UserID == "" {
		return nil, commonerrors.NewInvalidInputError("userId: is required")
	}
	if !p.Complete() {
		return nil, commonerrors.NewProfileIncompleteError("styleProfile and wardrobe are both required")
	}

	if err := h.store.Save(ctx, p); err != nil {
		if profile.IsConnectionError(err) {
			return nil, commonerrors.NewDatabaseConnectionFailedError(err)
		}
		return nil, commonerrors.NewProfileSaveFailedError(p.UserID, err)
	}

	savedAt := p.UpdatedAt.UTC().Format(time.RFC3339)
	h.logger.Info("profile saved", map[string]interface{}{
		"userId":  p.UserID,
		"savedAt": savedAt,
	})

	if err := h.publisher.Publish(ctx, events.New(events.TypeProfileSaved, p.UserID, nil)); err != nil {
		h.logger.Warn("failed to publish event", map[string]interface{}{
			"eventType": events.TypeProfileSaved,
			"error":     err.Error(),
		})
	}

	return &Output{Saved: true, SavedAt: savedAt}, nil
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
