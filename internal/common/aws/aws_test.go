package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	got *ses.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

type fakeSNS struct {
	got *sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.got = in
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

func TestSESClient_SendEmail(t *testing.T) {
	api := &fakeSES{}
	c := NewSESClientWithAPI(api, "dispatch@example.com")

	id, err := c.SendEmail(context.Background(), "tech@example.com", "New job", "text", "<p>html</p>")
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.Equal(t, []string{"tech@example.com"}, api.got.Destination.ToAddresses)
	assert.Equal(t, "dispatch@example.com", aws.ToString(api.got.Source))
	assert.Equal(t, "New job", aws.ToString(api.got.Message.Subject.Data))
}

func TestSESClient_SendEmailError(t *testing.T) {
	c := NewSESClientWithAPI(&fakeSES{err: errors.New("throttled")}, "dispatch@example.com")
	_, err := c.SendEmail(context.Background(), "tech@example.com", "s", "t", "h")
	assert.EqualError(t, err, "throttled")
}

func TestSNSClient_SendSMS(t *testing.T) {
	api := &fakeSNS{}
	c := NewSNSClientWithAPI(api, "ACDISPATCH")

	id, err := c.SendSMS(context.Background(), "+233201234567", "Job assigned")
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)
	assert.Equal(t, "+233201234567", aws.ToString(api.got.PhoneNumber))
	assert.Equal(t, "ACDISPATCH", aws.ToString(api.got.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
	assert.Equal(t, "Transactional", aws.ToString(api.got.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
}
