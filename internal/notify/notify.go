// Package notify delivers best-effort, fire-and-forget member notifications.
// The webhook path only enqueues; the worker consumes the queue and hands
// each notification to the templated email collaborator.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/awsx"
)

// Template names understood by the email collaborator.
const (
	TemplateMemberWelcome        = "member_welcome"
	TemplatePaymentFailed        = "payment_failed"
	TemplateSubscriptionCanceled = "subscription_canceled"
)

// Notification is the queue payload: recipient, template name, and template
// data. Rendering and delivery are the email collaborator's problem.
type Notification struct {
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Data      map[string]string `json:"data,omitempty"`
}

// EmailSender is the external templated-email collaborator.
type EmailSender interface {
	Send(ctx context.Context, recipient, template string, data map[string]string) error
}

// Publisher enqueues notifications on SQS.
type Publisher struct {
	sqs      awsx.SQSAPI
	queueURL string
	log      *zap.Logger
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient awsx.SQSAPI, queueURL string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		sqs:      sqsClient,
		queueURL: queueURL,
		log:      log.Named("notify"),
	}
}

// Notify enqueues one notification. Callers on the webhook path treat a
// failure here as best-effort: it must never trigger event redelivery.
func (p *Publisher) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	bodyStr := string(body)
	_, err = p.sqs.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &p.queueURL,
		MessageBody: &bodyStr,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"template": {
				DataType:    strPtr("String"),
				StringValue: &n.Template,
			},
			"recipient": {
				DataType:    strPtr("String"),
				StringValue: &n.Recipient,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
