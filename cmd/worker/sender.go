package main

import (
	"context"

	"go.uber.org/zap"
)

// logSender is the default EmailSender: it logs the rendered notification
// instead of delivering it. A real deployment swaps in a provider-backed
// sender here.
type logSender struct {
	log *zap.Logger
}

func (s logSender) Send(_ context.Context, recipient, template string, data map[string]string) error {
	fields := []zap.Field{
		zap.String("recipient", recipient),
		zap.String("template", template),
	}
	for k, v := range data {
		fields = append(fields, zap.String("data."+k, v))
	}
	s.log.Info("email sent", fields...)
	return nil
}
