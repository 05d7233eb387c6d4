package sendassignmentnotification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"ac-dispatch-workers/internal/common/camunda"
	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/common/metrics"
	"ac-dispatch-workers/internal/common/observability"
	"ac-dispatch-workers/internal/common/validation"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/models"
	"ac-dispatch-workers/internal/roster"
)

const TaskType = "send-assignment-notification"

type Store interface {
	GetTechnician(ctx context.Context, technicianID string) (matching.TechnicianProfile, error)
	GetJob(ctx context.Context, jobID string) (models.ServiceJob, error)
}

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, text, html string) (string, error)
}

// SMSSender is satisfied by *aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	store      Store
	email      EmailSender
	sms        SMSSender
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler wires the senders. A nil sender disables its channel.
func NewHandler(config *Config, store Store, email EmailSender, sms SMSSender, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		email:      email,
		sms:        sms,
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
			"jobKey":         job.GetKey(),
			"notificationId": output.NotificationID,
			"error":          err.Error(),
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

// Execute tells the technician about the assignment on every enabled channel
// they have a contact for. The job fails only when no channel delivered.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	tech, err := h.technician(ctx, input)
	if err != nil {
		return nil, err
	}
	req, err := h.requirements(ctx, input)
	if err != nil {
		return nil, err
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Channels:       make([]Delivery, 0, 2),
	}

	channels, eligible := h.channels(tech, req)
	if len(channels) == 0 {
		if eligible {
			return nil, errors.NewRecipientUnreachableError(tech.ID)
		}
		h.logger.Info("notifications disabled, nothing sent", map[string]interface{}{
			"jobId":        input.JobID,
			"technicianId": tech.ID,
		})
		output.Status = models.NotificationDisabled
		return output, nil
	}

	data := newMessageData(input, tech, req)

	var (
		sent     int
		firstErr error
		failedOn string
	)
	for _, ch := range channels {
		d := h.deliver(ctx, ch, tech, data)
		metrics.NotificationsDelivered.WithLabelValues(d.Channel, d.Status).Inc()
		output.Channels = append(output.Channels, d.Delivery)
		if d.err != nil {
			if firstErr == nil {
				firstErr, failedOn = d.err, ch
			}
			continue
		}
		sent++
	}

	if sent == 0 {
		return nil, errors.NewNotificationSendFailedError(failedOn, firstErr).
			WithMetadata("technicianId", tech.ID)
	}

	output.Status = models.NotificationSent
	if sent < len(channels) {
		output.Status = models.NotificationPartial
	}

	h.logger.Info("assignment notification sent", map[string]interface{}{
		"type":           models.NotificationJobAssigned,
		"notificationId": output.NotificationID,
		"jobId":          input.JobID,
		"technicianId":   tech.ID,
		"status":         output.Status,
	})
	return output, nil
}

// channels lists the channels to attempt. eligible reports whether any
// channel applied before contact details were considered. Malformed
// addresses count as missing.
func (h *Handler) channels(tech matching.TechnicianProfile, req matching.JobRequirements) (channels []string, eligible bool) {
	if h.config.EmailEnabled && h.email != nil {
		eligible = true
		if validation.ValidateEmail(tech.Contact.Email) {
			channels = append(channels, models.ChannelEmail)
		}
	}
	if h.config.SMSEnabled && h.sms != nil && (req.Emergency || !h.config.SMSEmergencyOnly) {
		eligible = true
		if validation.ValidatePhone(tech.Contact.Phone) {
			channels = append(channels, models.ChannelSMS)
		}
	}
	return channels, eligible
}

type delivery struct {
	Delivery
	err error
}

func (h *Handler) deliver(ctx context.Context, channel string, tech matching.TechnicianProfile, data messageData) delivery {
	var (
		id  string
		err error
	)
	switch channel {
	case models.ChannelEmail:
		var text, html string
		if text, html, err = data.render(); err == nil {
			id, err = h.email.SendEmail(ctx, tech.Contact.Email, data.subject(), text, html)
		}
	case models.ChannelSMS:
		id, err = h.sms.SendSMS(ctx, tech.Contact.Phone, data.sms())
	}

	if err != nil {
		h.logger.Warn("notification channel failed", map[string]interface{}{
			"channel":      channel,
			"technicianId": tech.ID,
			"error":        err.Error(),
		})
		return delivery{
			Delivery: Delivery{Channel: channel, Status: models.NotificationFailed, Error: err.Error()},
			err:      err,
		}
	}
	return delivery{Delivery: Delivery{Channel: channel, Status: models.NotificationSent, MessageID: id}}
}

func (h *Handler) technician(ctx context.Context, input *Input) (matching.TechnicianProfile, error) {
	if len(input.Technician) > 0 && string(input.Technician) != "null" {
		techs, err := roster.DecodeInline([]json.RawMessage{input.Technician}, h.config.DefaultMaxJobsPerDay)
		if err != nil {
			return matching.TechnicianProfile{}, err
		}
		return techs[0], nil
	}
	return h.store.GetTechnician(ctx, input.TechnicianID)
}

func (h *Handler) requirements(ctx context.Context, input *Input) (matching.JobRequirements, error) {
	if input.Requirements != nil {
		return *input.Requirements, nil
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
