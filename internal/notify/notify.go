// internal/notify/notify.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	standarderrors "green-genie/internal/common/errors"
	"green-genie/internal/common/logger"
	"green-genie/internal/models"
)

// EmailSender is the slice of the SES client used here.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher is the slice of the SNS client used here.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notifier delivers interaction summaries over email and operational
// alerts to an SNS topic.
type Notifier struct {
	email     EmailSender
	topics    TopicPublisher
	fromEmail string
	topicARN  string
	logger    logger.Logger
}

func NewNotifier(email EmailSender, topics TopicPublisher, fromEmail, topicARN string, log logger.Logger) *Notifier {
	return &Notifier{
		email:     email,
		topics:    topics,
		fromEmail: fromEmail,
		topicARN:  topicARN,
		logger:    log.With(map[string]interface{}{"component": "notify"}),
	}
}

// SendInteractionEmail mails a plain-text summary of an interaction to the
// given recipient.
func (n *Notifier) SendInteractionEmail(ctx context.Context, to string, it models.Interaction) error {
	if n.email == nil || n.fromEmail == "" {
		return standarderrors.NewNotificationSendFailedError("email", fmt.Errorf("email delivery is not configured"))
	}

	subject := fmt.Sprintf("Your investment recommendation (%s, %s risk)", it.Sector, it.Risk)
	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.fromEmail),
		Destination: &sestypes.Destination{ToAddresses: []string{to}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(formatInteraction(it))},
			},
		},
	})
	if err != nil {
		n.logger.Error("email delivery failed", map[string]interface{}{
			"interaction_id": it.ID,
			"error":          err.Error(),
		})
		return standarderrors.NewNotificationSendFailedError("email", err)
	}

	n.logger.Info("interaction email sent", map[string]interface{}{"interaction_id": it.ID})
	return nil
}

// PublishAlert sends an operational alert to the configured SNS topic.
// Alerting is best effort; a missing topic is logged, not an error.
func (n *Notifier) PublishAlert(ctx context.Context, subject, message string) {
	if n.topics == nil || n.topicARN == "" {
		n.logger.Debug("alert topic not configured, dropping alert", map[string]interface{}{"subject": subject})
		return
	}

	_, err := n.topics.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		n.logger.Error("alert publish failed", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
	}
}

func formatInteraction(it models.Interaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sector: %s\nRisk tolerance: %s\n", it.Sector, it.Risk)
	if it.FreeText != "" {
		fmt.Fprintf(&b, "Your notes: %s\n", it.FreeText)
	}
	b.WriteString("\nRecommended companies:\n")
	for _, c := range it.Companies {
		fmt.Fprintf(&b, "  - %s (%s)\n", c.Company, c.Sector)
	}
	fmt.Fprintf(&b, "\n%s\n", it.Explanation)
	b.WriteString("\nThis summary is informational only and is not financial advice.\n")
	return b.String()
}
