package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/notify"
)

// Processor consumes queued notifications and hands each one to the email
// collaborator.
type Processor struct {
	sender notify.EmailSender
	log    *zap.Logger
}

// NewProcessor creates a worker processor with the email sender injected.
func NewProcessor(sender notify.EmailSender, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		sender: sender,
		log:    log.Named("worker"),
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If it fails too many times the
			// message goes to the DLQ.
			p.log.Error("worker error", zap.String("message_id", rec.MessageId), zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var n notify.Notification
	if err := json.Unmarshal([]byte(rec.Body), &n); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if n.Recipient == "" || n.Template == "" {
		return fmt.Errorf("notification missing recipient or template: %s", rec.Body)
	}

	p.log.Info("delivering notification",
		zap.String("recipient", n.Recipient),
		zap.String("template", n.Template))

	if err := p.sender.Send(ctx, n.Recipient, n.Template, n.Data); err != nil {
		return fmt.Errorf("send %s to %s: %w", n.Template, n.Recipient, err)
	}
	return nil
}
