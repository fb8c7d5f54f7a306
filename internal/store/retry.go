package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// withReadRetries runs op up to readAttempts times with linear backoff.
// Only read paths use it: retrying a write could duplicate side effects in
// business logic layered above. Non-transient errors surface immediately.
func (s *Store[T]) withReadRetries(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.readAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		if attempt == s.readAttempts {
			break
		}

		s.log.Warn("transient read failure, retrying",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoffBase):
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrTransientStore, s.readAttempts, lastErr)
}

// isTransient classifies storage faults worth retrying: server faults,
// throttling, and anything that never reached the service (network errors
// carry no API error at all).
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	switch apiErr.ErrorCode() {
	case "InternalServerError", "ServiceUnavailable",
		"ThrottlingException", "ProvisionedThroughputExceededException",
		"RequestLimitExceeded":
		return true
	}
	return apiErr.ErrorFault() == smithy.FaultServer
}
