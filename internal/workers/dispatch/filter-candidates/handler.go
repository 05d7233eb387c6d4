package filtercandidates

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"ac-dispatch-workers/internal/common/camunda"
	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/common/metrics"
	"ac-dispatch-workers/internal/common/observability"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/roster"
)

const TaskType = "filter-candidates"

type Handler struct {
	config     *Config
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		obs:        obs,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, startTime, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, startTime, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		h.failJob(ctx, client, job, startTime, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.Job(ctx, TaskType, startTime, nil)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := inputSchema.Decode(job.GetVariables(), &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// Execute applies the candidate filter to the inline roster.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	technicians, err := roster.DecodeInline(input.Technicians, h.config.DefaultMaxJobsPerDay)
	if err != nil {
		return nil, err
	}

	kept, excluded := matching.Partition(technicians)

	ids := make([]string, len(kept))
	for i, t := range kept {
		ids[i] = t.ID
	}
	for _, ex := range excluded {
		metrics.MatchingCandidatesExcluded.WithLabelValues(TaskType, string(ex.Reason)).Inc()
	}
	h.obs.RecordCandidates(ctx, TaskType, len(kept))

	h.logger.Info("candidates filtered", map[string]interface{}{
		"technicians": len(technicians),
		"candidates":  len(kept),
		"excluded":    len(excluded),
	})

	return &Output{
		CandidateIDs:   ids,
		CandidateCount: len(ids),
		Exclusions:     excluded,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, startTime time.Time, err error) {
	code := string(errors.ErrCodeInternal)
	if stdErr, ok := errors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.obs.Job(ctx, TaskType, startTime, err)
	h.errHandler.HandleJobError(ctx, client, job, err)
}
