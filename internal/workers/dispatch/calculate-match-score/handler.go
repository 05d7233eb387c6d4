package calculatematchscore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"ac-dispatch-workers/internal/common/camunda"
	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/common/metrics"
	"ac-dispatch-workers/internal/common/observability"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/models"
	"ac-dispatch-workers/internal/roster"
)

const TaskType = "calculate-match-score"

// Store is the part of the roster the worker reads.
type Store interface {
	GetTechnician(ctx context.Context, technicianID string) (matching.TechnicianProfile, error)
	GetJob(ctx context.Context, jobID string) (models.ServiceJob, error)
}

type Handler struct {
	config     *Config
	store      Store
	scorer     *matching.Scorer
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, store Store, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		scorer:     matching.NewScorer(config.Weights),
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

// Execute scores one technician against one job. The filter verdict is
// reported alongside the score; excluded technicians are still scored.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	tech, err := h.technician(ctx, input)
	if err != nil {
		return nil, err
	}
	req, err := h.requirements(ctx, input)
	if err != nil {
		return nil, err
	}

	factors := h.scorer.Breakdown(tech, req)
	output := &Output{
		TechnicianID: tech.ID,
		MatchScore:   factors.Total(),
		MatchFactors: factors,
		IsCandidate:  true,
	}
	if ex, excluded := matching.ExclusionReason(tech); excluded {
		output.IsCandidate = false
		output.ExclusionReason = ex.Reason
	}

	h.logger.Info("match score calculated", map[string]interface{}{
		"technicianId": tech.ID,
		"jobId":        input.JobID,
		"score":        output.MatchScore,
		"isCandidate":  output.IsCandidate,
	})

	return output, nil
}

func (h *Handler) technician(ctx context.Context, input *Input) (matching.TechnicianProfile, error) {
	if len(input.Technician) > 0 && string(input.Technician) != "null" {
		techs, err := roster.DecodeInline([]json.RawMessage{input.Technician}, h.config.DefaultMaxJobsPerDay)
		if err != nil {
			return matching.TechnicianProfile{}, err
		}
		return techs[0], nil
	}
	if input.TechnicianID == "" {
		return matching.TechnicianProfile{}, errors.NewInvalidJobRequirementsError("technicianId or technician is required")
	}
	return h.store.GetTechnician(ctx, input.TechnicianID)
}

func (h *Handler) requirements(ctx context.Context, input *Input) (matching.JobRequirements, error) {
	if input.Requirements != nil {
		return *input.Requirements, nil
	}
	if input.JobID == "" {
		return matching.JobRequirements{}, errors.NewInvalidJobRequirementsError("jobId or requirements is required")
	}
	job, err := h.store.GetJob(ctx, input.JobID)
	if err != nil {
		return matching.JobRequirements{}, err
	}
	return job.Requirements(), nil
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
