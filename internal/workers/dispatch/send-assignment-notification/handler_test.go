package sendassignmentnotification

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ac-dispatch-workers/internal/common/aws"
	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/models"
)

type fakeEmail struct {
	to, subject, text, html string
	calls                   int
	err                     error
}

func (f *fakeEmail) SendEmail(_ context.Context, to, subject, text, html string) (string, error) {
	f.calls++
	f.to, f.subject, f.text, f.html = to, subject, text, html
	if f.err != nil {
		return "", f.err
	}
	return "email-1", nil
}

type fakeSMS struct {
	phone, message string
	calls          int
	err            error
}

func (f *fakeSMS) SendSMS(_ context.Context, phone, message string) (string, error) {
	f.calls++
	f.phone, f.message = phone, message
	if f.err != nil {
		return "", f.err
	}
	return "sms-1", nil
}

type stubStore struct {
	tech matching.TechnicianProfile
	job  models.ServiceJob
	err  error
}

func (s *stubStore) GetTechnician(_ context.Context, id string) (matching.TechnicianProfile, error) {
	if s.err != nil {
		return matching.TechnicianProfile{}, s.err
	}
	return s.tech, nil
}

func (s *stubStore) GetJob(_ context.Context, id string) (models.ServiceJob, error) {
	if s.err != nil {
		return models.ServiceJob{}, s.err
	}
	return s.job, nil
}

func storeWithContact(email, phone string) *stubStore {
	return &stubStore{
		tech: matching.TechnicianProfile{
			ID:          "tech-1",
			DisplayName: "Omar",
			Contact:     matching.Contact{Email: email, Phone: phone},
		},
		job: models.ServiceJob{
			ID:             "job-1",
			RequiredSkills: []matching.Skill{matching.SkillACRepair, matching.SkillGasRefill},
			ServiceArea:    "JLT",
			Complexity:     matching.ComplexityComplex,
		},
	}
}

var baseInput = Input{AssignmentID: "asg-1", JobID: "job-1", TechnicianID: "tech-1"}

func TestHandler_Execute_BothChannels(t *testing.T) {
	email, sms := &fakeEmail{}, &fakeSMS{}
	h := NewHandler(DefaultConfig(), storeWithContact("omar@example.com", "+971500000001"), email, sms, nil, logger.NewTestLogger(t))

	input := baseInput
	output, err := h.Execute(context.Background(), &input)
	require.NoError(t, err)

	assert.NotEmpty(t, output.NotificationID)
	assert.Equal(t, models.NotificationSent, output.Status)
	require.Len(t, output.Channels, 2)
	assert.Equal(t, Delivery{Channel: models.ChannelEmail, Status: models.NotificationSent, MessageID: "email-1"}, output.Channels[0])
	assert.Equal(t, Delivery{Channel: models.ChannelSMS, Status: models.NotificationSent, MessageID: "sms-1"}, output.Channels[1])

	assert.Equal(t, "omar@example.com", email.to)
	assert.Equal(t, "New job assigned: job-1", email.subject)
	assert.Contains(t, email.text, "Hi Omar,")
	assert.Contains(t, email.text, "Work: AC Repair, Gas Refill")
	assert.Contains(t, email.text, "Complexity: Complex")
	assert.Contains(t, email.text, "Assignment reference: asg-1")
	assert.Contains(t, email.html, "<strong>job-1</strong>")

	assert.Equal(t, "+971500000001", sms.phone)
	assert.Equal(t, "Job job-1 assigned to you in JLT. AC Repair, Gas Refill. Ref asg-1", sms.message)
}

func TestHandler_Execute_InlineValues(t *testing.T) {
	email := &fakeEmail{}
	h := NewHandler(DefaultConfig(), &stubStore{err: stderrors.New("store must not be called")}, email, nil, nil, logger.NewTestLogger(t))

	input := baseInput
	input.Technician = []byte(`{"id":"tech-1","displayName":"<Ana>","contact":{"email":"ana@example.com"}}`)
	input.Requirements = &matching.JobRequirements{ServiceArea: "Deira", Emergency: true}

	output, err := h.Execute(context.Background(), &input)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, output.Status)
	assert.Equal(t, "EMERGENCY job assigned: job-1", email.subject)
	assert.Contains(t, email.text, "Work: General service")
	assert.Contains(t, email.html, "&lt;Ana&gt;")
}

func TestHandler_Execute_SMSEmergencyOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SMSEmergencyOnly = true

	t.Run("routine job skips sms", func(t *testing.T) {
		email, sms := &fakeEmail{}, &fakeSMS{}
		h := NewHandler(cfg, storeWithContact("omar@example.com", "+971500000001"), email, sms, nil, logger.NewTestLogger(t))

		input := baseInput
		output, err := h.Execute(context.Background(), &input)
		require.NoError(t, err)
		assert.Len(t, output.Channels, 1)
		assert.Equal(t, 0, sms.calls)
	})

	t.Run("emergency job sends sms", func(t *testing.T) {
		email, sms := &fakeEmail{}, &fakeSMS{}
		store := storeWithContact("omar@example.com", "+971500000001")
		store.job.Emergency = true
		h := NewHandler(cfg, store, email, sms, nil, logger.NewTestLogger(t))

		input := baseInput
		_, err := h.Execute(context.Background(), &input)
		require.NoError(t, err)
		assert.Equal(t, 1, sms.calls)
		assert.True(t, strings.HasPrefix(sms.message, "URGENT: "))
	})
}

func TestHandler_Execute_PartialFailure(t *testing.T) {
	email := &fakeEmail{err: stderrors.New("MessageRejected")}
	sms := &fakeSMS{}
	h := NewHandler(DefaultConfig(), storeWithContact("omar@example.com", "+971500000001"), email, sms, nil, logger.NewTestLogger(t))

	input := baseInput
	output, err := h.Execute(context.Background(), &input)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationPartial, output.Status)
	assert.Equal(t, models.NotificationFailed, output.Channels[0].Status)
	assert.Equal(t, "MessageRejected", output.Channels[0].Error)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		store     *stubStore
		email     *fakeEmail
		sms       *fakeSMS
		code      errors.ErrorCode
		retryable bool
	}{
		{
			name:  "no contact details",
			store: storeWithContact("", ""),
			email: &fakeEmail{},
			sms:   &fakeSMS{},
			code:  errors.ErrCodeRecipientUnreachable,
		},
		{
			name:  "malformed contact details",
			store: storeWithContact("omar-at-example", "12"),
			email: &fakeEmail{},
			sms:   &fakeSMS{},
			code:  errors.ErrCodeRecipientUnreachable,
		},
		{
			name:      "every channel failed",
			store:     storeWithContact("omar@example.com", "+971500000001"),
			email:     &fakeEmail{err: stderrors.New("throttled")},
			sms:       &fakeSMS{err: stderrors.New("opted out")},
			code:      errors.ErrCodeNotificationSendFailed,
			retryable: true,
		},
		{
			name:  "unknown technician",
			store: &stubStore{err: errors.NewTechnicianNotFoundError("tech-1")},
			email: &fakeEmail{},
			sms:   &fakeSMS{},
			code:  errors.ErrCodeTechnicianNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(DefaultConfig(), tt.store, tt.email, tt.sms, nil, logger.NewTestLogger(t))

			input := baseInput
			_, err := h.Execute(context.Background(), &input)
			require.Error(t, err)
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestHandler_Execute_AllChannelsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	h := NewHandler(cfg, storeWithContact("", ""), &fakeEmail{}, &fakeSMS{}, nil, logger.NewTestLogger(t))

	input := baseInput
	output, err := h.Execute(context.Background(), &input)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDisabled, output.Status)
	assert.Empty(t, output.Channels)
}

type fakeSESAPI struct {
	got *ses.SendEmailInput
}

func (f *fakeSESAPI) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.got = in
	return &ses.SendEmailOutput{MessageId: awssdk.String("0100018f-ses")}, nil
}

func TestHandler_Execute_ThroughSES(t *testing.T) {
	api := &fakeSESAPI{}
	h := NewHandler(DefaultConfig(), storeWithContact("omar@example.com", ""),
		aws.NewSESClientWithAPI(api, "dispatch@example.com"), nil, nil, logger.NewTestLogger(t))

	input := baseInput
	output, err := h.Execute(context.Background(), &input)
	require.NoError(t, err)
	assert.Equal(t, "0100018f-ses", output.Channels[0].MessageID)
	require.NotNil(t, api.got)
	assert.Equal(t, []string{"omar@example.com"}, api.got.Destination.ToAddresses)
	assert.Equal(t, "New job assigned: job-1", awssdk.ToString(api.got.Message.Subject.Data))
}

func TestSMSMessage_Truncated(t *testing.T) {
	d := messageData{
		JobID: "job-1",
		Work:  strings.Repeat("Duct Cleaning, ", 20),
	}
	msg := d.sms()
	assert.Len(t, []rune(msg), smsLimit)
	assert.True(t, strings.HasSuffix(msg, "..."))
}

func TestHandler_ParseInput(t *testing.T) {
	h := NewHandler(DefaultConfig(), &stubStore{}, nil, nil, nil, logger.NewTestLogger(t))

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"jobId":"job-1","technicianId":"tech-1","assignmentId":"asg-1"}`}}
	input, err := h.parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, "asg-1", input.AssignmentID)

	job = entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `{"jobId":"job-1"}`}}
	_, err = h.parseInput(job)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidJobRequirements))
}
