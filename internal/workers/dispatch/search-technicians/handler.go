package searchtechnicians

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"ac-dispatch-workers/internal/common/camunda"
	"ac-dispatch-workers/internal/common/database"
	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/common/metrics"
	"ac-dispatch-workers/internal/common/observability"
	"ac-dispatch-workers/internal/roster"
)

const TaskType = "search-technicians"

type Searcher interface {
	Search(ctx context.Context, index string, query map[string]interface{}) ([]byte, error)
}

type Handler struct {
	config     *Config
	search     Searcher
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, search Searcher, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		search:     search,
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

// Execute finds technicians covering the service area. The result is a
// roster for rank-technicians, not a ranking.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	size := input.Size
	if size <= 0 {
		size = h.config.DefaultSize
	}

	body, err := h.search.Search(ctx, h.config.Index, buildQuery(input, size))
	if err != nil {
		return nil, h.mapSearchError(ctx, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewSearchQueryFailedError(h.config.Index, fmt.Errorf("decode response: %w", err))
	}

	sources := make([]json.RawMessage, len(resp.Hits.Hits))
	for i, hit := range resp.Hits.Hits {
		sources[i] = hit.Source
	}
	technicians, err := roster.DecodeInline(sources, h.config.DefaultMaxJobsPerDay)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(h.config.Index, err)
	}

	ids := make([]string, len(technicians))
	for i := range technicians {
		if technicians[i].ID == "" {
			technicians[i].ID = resp.Hits.Hits[i].ID
		}
		ids[i] = technicians[i].ID
	}

	h.logger.Info("technicians found", map[string]interface{}{
		"serviceArea": input.ServiceArea,
		"hits":        len(technicians),
		"totalHits":   resp.Hits.Total.Value,
	})

	return &Output{
		Technicians:   technicians,
		TechnicianIDs: ids,
		TotalHits:     resp.Hits.Total.Value,
	}, nil
}

func (h *Handler) mapSearchError(ctx context.Context, err error) *errors.StandardError {
	if ctx.Err() == context.DeadlineExceeded || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewSearchTimeoutError(h.config.Index)
	}

	var searchErr *database.SearchError
	if stderrors.As(err, &searchErr) {
		if searchErr.StatusCode == http.StatusNotFound {
			return errors.NewIndexNotFoundError(h.config.Index)
		}
		return errors.NewSearchQueryFailedError(h.config.Index, err)
	}
	return errors.NewElasticsearchConnectionFailedError(err)
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
