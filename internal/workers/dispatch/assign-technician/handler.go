package assigntechnician

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"ac-dispatch-workers/internal/common/camunda"
	"ac-dispatch-workers/internal/common/database"
	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/common/metrics"
	"ac-dispatch-workers/internal/common/observability"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/models"
	"ac-dispatch-workers/internal/roster"
)

const TaskType = "assign-technician"

const (
	lockJobQuery = `SELECT status, assigned_technician_id, assignment_id, assigned_at
		FROM service_jobs WHERE id = $1 FOR UPDATE`

	lockAccountQuery = `SELECT role, metadata FROM accounts WHERE id = $1 FOR UPDATE`

	assignJobQuery = `UPDATE service_jobs
		SET status = 'assigned', assigned_technician_id = $2, assignment_id = $3, assigned_at = $4, updated_at = $4
		WHERE id = $1`

	appendJobQuery = `UPDATE accounts SET metadata = jsonb_set(
			jsonb_set(COALESCE(metadata, '{}'::jsonb), '{currentJobIds}',
				COALESCE(NULLIF(metadata->'currentJobIds', 'null'::jsonb), '[]'::jsonb) || to_jsonb($2::text)),
			'{totalJobsAssigned}', to_jsonb(COALESCE((metadata->>'totalJobsAssigned')::int, 0) + 1))
		WHERE id = $1`
)

// Invalidator drops cached technician profiles.
type Invalidator interface {
	Invalidate(ctx context.Context, technicianID string)
}

type Handler struct {
	config     *Config
	db         *sql.DB
	cache      Invalidator
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	now        func() time.Time
}

func NewHandler(config *Config, db *sql.DB, cache Invalidator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		cache:      cache,
		obs:        obs,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
		now:        time.Now,
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
			"jobKey":       job.GetKey(),
			"assignmentId": output.AssignmentID,
			"error":        err.Error(),
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

// Execute assigns the technician to the job in one transaction, holding row
// locks on both so concurrent assignments cannot overbook a technician.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var output *Output
	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var err error
		output, err = h.assign(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, errors.FromContext(err,
			func() *errors.StandardError { return errors.NewQueryTimeoutError("assignment") },
			errors.NewAssignmentFailedError,
		)
	}

	if !output.AlreadyAssigned && h.cache != nil {
		h.cache.Invalidate(ctx, input.TechnicianID)
	}

	h.logger.Info("technician assigned", map[string]interface{}{
		"jobId":           input.JobID,
		"technicianId":    input.TechnicianID,
		"assignmentId":    output.AssignmentID,
		"alreadyAssigned": output.AlreadyAssigned,
	})
	return output, nil
}

func (h *Handler) assign(ctx context.Context, tx *sql.Tx, input *Input) (*Output, error) {
	var (
		status       sql.NullString
		assignedTo   sql.NullString
		assignmentID sql.NullString
		assignedAt   sql.NullTime
	)
	err := tx.QueryRowContext(ctx, lockJobQuery, input.JobID).Scan(&status, &assignedTo, &assignmentID, &assignedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewJobNotFoundError(input.JobID)
		}
		return nil, fmt.Errorf("lock job: %w", err)
	}

	jobStatus := models.JobStatus(status.String)
	if !jobStatus.Assignable() {
		if jobStatus.Held() {
			if assignedTo.String == input.TechnicianID && assignmentID.Valid {
				return &Output{
					AssignmentID:    assignmentID.String,
					JobID:           input.JobID,
					TechnicianID:    input.TechnicianID,
					Status:          string(jobStatus),
					AssignedAt:      assignedAt.Time,
					AlreadyAssigned: true,
				}, nil
			}
			return nil, errors.NewJobAlreadyAssignedError(input.JobID, assignedTo.String)
		}
		return nil, errors.NewBusinessRuleError("Service job is not assignable",
			fmt.Sprintf("jobId: %s, status: %s", input.JobID, jobStatus))
	}

	var (
		role     string
		metadata []byte
	)
	err = tx.QueryRowContext(ctx, lockAccountQuery, input.TechnicianID).Scan(&role, &metadata)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewTechnicianNotFoundError(input.TechnicianID)
		}
		return nil, fmt.Errorf("lock technician: %w", err)
	}

	tech, err := roster.DecodeTechnician(input.TechnicianID, role, metadata, h.config.DefaultMaxJobsPerDay)
	if err != nil {
		return nil, err
	}
	if ex, excluded := matching.ExclusionReason(tech); excluded {
		if ex.Reason == matching.ExcludedOffline {
			return nil, errors.NewTechnicianOfflineError(tech.ID)
		}
		return nil, errors.NewTechnicianAtCapacityError(tech.ID, len(tech.CurrentJobIDs), tech.MaxJobsPerDay)
	}

	id := uuid.New().String()
	now := h.now().UTC()

	if _, err := tx.ExecContext(ctx, assignJobQuery, input.JobID, input.TechnicianID, id, now); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	if _, err := tx.ExecContext(ctx, appendJobQuery, input.TechnicianID, input.JobID); err != nil {
		return nil, fmt.Errorf("update technician: %w", err)
	}

	return &Output{
		AssignmentID:    id,
		JobID:           input.JobID,
		TechnicianID:    input.TechnicianID,
		Status:          string(models.JobStatusAssigned),
		AssignedAt:      now,
		CurrentJobCount: len(tech.CurrentJobIDs) + 1,
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
