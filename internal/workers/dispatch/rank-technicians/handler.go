package ranktechnicians

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"ac-dispatch-workers/internal/common/camunda"
	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/common/metrics"
	"ac-dispatch-workers/internal/common/observability"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/models"
	"ac-dispatch-workers/internal/roster"
)

const TaskType = "rank-technicians"

type Store interface {
	ListTechnicians(ctx context.Context, ids []string) ([]matching.TechnicianProfile, error)
	GetJob(ctx context.Context, jobID string) (models.ServiceJob, error)
}

type Handler struct {
	config     *Config
	store      Store
	ranker     *matching.Ranker
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, store Store, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		ranker:     matching.NewRanker(matching.NewScorer(config.Weights)),
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

// Execute ranks the roster for one job. No surviving candidate is a normal
// outcome: the ranking is empty and topTechnicianId is "".
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := h.obs.StartSpan(ctx, "rank-technicians",
		attribute.String("jobId", input.JobID),
	)
	defer span.End()

	req, err := h.requirements(ctx, input)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	technicians, err := h.roster(ctx, input)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	unknown := matching.UnknownSkills(req.RequiredSkills)
	if len(unknown) > 0 {
		h.logger.Warn("required skills outside the catalog", map[string]interface{}{
			"jobId":  input.JobID,
			"skills": unknown,
		})
	}

	limit := h.config.MaxResults
	if input.Limit > 0 {
		limit = input.Limit
	}

	started := time.Now()
	candidates, excluded := matching.Partition(technicians)
	ranked := h.ranker.Rank(candidates, req, limit)
	elapsed := time.Since(started)

	for _, ex := range excluded {
		metrics.MatchingCandidatesExcluded.WithLabelValues(TaskType, string(ex.Reason)).Inc()
	}
	metrics.MatchingCandidatesRanked.WithLabelValues(TaskType).Observe(float64(len(candidates)))
	h.obs.RecordCandidates(ctx, TaskType, len(candidates))

	if h.config.SlowRanking > 0 && elapsed > h.config.SlowRanking {
		metrics.MatchingSlowRankings.WithLabelValues(TaskType).Inc()
		h.logger.Warn("slow ranking", map[string]interface{}{
			"jobId":       input.JobID,
			"technicians": len(technicians),
			"elapsed_ms":  elapsed.Milliseconds(),
		})
	}

	output := &Output{
		RankedTechnicians: ranked,
		CandidateCount:    len(candidates),
		ExcludedCount:     len(excluded),
		UnknownSkills:     unknown,
	}
	if len(ranked) > 0 {
		output.TopTechnicianID = ranked[0].TechnicianID
		output.TopScore = ranked[0].Score
	}

	span.SetAttributes(
		attribute.Int("candidates", len(candidates)),
		attribute.String("topTechnicianId", output.TopTechnicianID),
	)
	h.logger.Info("technicians ranked", map[string]interface{}{
		"jobId":           input.JobID,
		"technicians":     len(technicians),
		"candidates":      len(candidates),
		"topTechnicianId": output.TopTechnicianID,
		"topScore":        output.TopScore,
	})

	return output, nil
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
	if !job.Status.Assignable() {
		return matching.JobRequirements{}, errors.NewJobAlreadyAssignedError(job.ID, job.AssignedTechnicianID)
	}
	return job.Requirements(), nil
}

func (h *Handler) roster(ctx context.Context, input *Input) ([]matching.TechnicianProfile, error) {
	if input.Technicians != nil {
		return roster.DecodeInline(input.Technicians, h.config.DefaultMaxJobsPerDay)
	}
	return h.store.ListTechnicians(ctx, input.TechnicianIDs)
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
