// internal/notify/notify_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "green-genie/internal/common/errors"
	"green-genie/internal/common/logger"
	"green-genie/internal/models"
)

type stubEmailSender struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (s *stubEmailSender) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	s.inputs = append(s.inputs, input)
	return &ses.SendEmailOutput{}, s.err
}

type stubPublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	s.inputs = append(s.inputs, input)
	return &sns.PublishOutput{}, s.err
}

func sampleInteraction() models.Interaction {
	return models.Interaction{
		ID:       "abc",
		Sector:   "Renewable Energy",
		Risk:     "Medium",
		FreeText: "long term growth",
		Companies: []models.Recommendation{
			{Company: "SolarCo", Sector: "Renewable Energy", ESGScore: 91},
		},
		Explanation: "Diversify across solar and wind.",
	}
}

func TestSendInteractionEmail(t *testing.T) {
	email := &stubEmailSender{}
	n := NewNotifier(email, nil, "genie@example.com", "", logger.NewTestLogger(t))

	err := n.SendInteractionEmail(context.Background(), "investor@example.com", sampleInteraction())
	require.NoError(t, err)
	require.Len(t, email.inputs, 1)

	input := email.inputs[0]
	assert.Equal(t, "genie@example.com", *input.Source)
	assert.Equal(t, []string{"investor@example.com"}, input.Destination.ToAddresses)
	assert.Contains(t, *input.Message.Subject.Data, "Renewable Energy")

	body := *input.Message.Body.Text.Data
	assert.Contains(t, body, "SolarCo")
	assert.Contains(t, body, "Diversify across solar and wind.")
	assert.Contains(t, body, "not financial advice")
}

func TestSendInteractionEmail_NotConfigured(t *testing.T) {
	n := NewNotifier(nil, nil, "", "", logger.NewTestLogger(t))

	err := n.SendInteractionEmail(context.Background(), "investor@example.com", sampleInteraction())
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeNotificationSendFailed, stdErr.Code)
}

func TestSendInteractionEmail_DeliveryFailure(t *testing.T) {
	email := &stubEmailSender{err: errors.New("MessageRejected")}
	n := NewNotifier(email, nil, "genie@example.com", "", logger.NewTestLogger(t))

	err := n.SendInteractionEmail(context.Background(), "investor@example.com", sampleInteraction())
	require.Error(t, err)
}

func TestPublishAlert(t *testing.T) {
	topics := &stubPublisher{}
	n := NewNotifier(nil, topics, "", "arn:aws:sns:us-east-1:000000000000:ops", logger.NewTestLogger(t))

	n.PublishAlert(context.Background(), "dataset refresh failed", "bucket unreachable")

	require.Len(t, topics.inputs, 1)
	assert.Equal(t, "dataset refresh failed", *topics.inputs[0].Subject)
	assert.Equal(t, "bucket unreachable", *topics.inputs[0].Message)
}

func TestPublishAlert_NoTopicConfigured(t *testing.T) {
	n := NewNotifier(nil, nil, "", "", logger.NewTestLogger(t))

	// Must not panic; alerting is best effort.
	n.PublishAlert(context.Background(), "subject", "message")
}
