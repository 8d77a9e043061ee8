// internal/workers/profile/load-style-profile/handler.go
package loadstyleprofile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonerrors "storefront-stylist/internal/common/errors"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/metrics"
	"storefront-stylist/internal/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "load-style-profile"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config       *Config
	store        profile.Store
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, store profile.Store, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
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

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, commonerrors.NewInvalidInputError("userId is required")
	}

	p, err := h.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			if h.config.FailOnMissing {
				return nil, commonerrors.NewProfileNotFoundError(userID)
			}
			h.logger.Info("no saved profile", map[string]interface{}{"userId": userID})
			return &Output{Found: false}, nil
		}
		if profile.IsConnectionError(err) {
			return nil, commonerrors.NewDatabaseConnectionFailedError(err)
		}
		return nil, commonerrors.NewProfileLoadFailedError(userID, err)
	}

	output := &Output{
		Found:        true,
		StyleProfile: p.StyleProfile,
		Wardrobe:     p.Wardrobe,
		Complete:     p.Complete(),
	}
	if !p.UpdatedAt.IsZero() {
		output.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}

	h.logger.Info("profile loaded", map[string]interface{}{
		"userId":   userID,
		"complete": output.Complete,
	})
	return output, nil
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
