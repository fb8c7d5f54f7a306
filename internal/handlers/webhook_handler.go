// Package handlers wires the HTTP boundary. Only the billing webhook carries
// real logic; everything else on the router is a thin adapter.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/billing"
)

// WebhookConfig groups dependencies for the billing webhook route.
type WebhookConfig struct {
	Verifier *billing.Verifier
	Engine   *billing.Engine
	Log      *zap.Logger
}

// RegisterWebhookRoutes registers the billing-provider webhook endpoint.
//
// Response contract: 400 when the signature fails or the payload is
// malformed (the provider retries), 500 when persistence fails (the provider
// retries), 200 for every authenticated and persisted event, including types
// we do not handle.
func RegisterWebhookRoutes(r *gin.Engine, cfg WebhookConfig) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("handlers.webhook")

	r.POST("/webhooks/billing", func(c *gin.Context) {
		ctx := c.Request.Context()

		// Verification MUST run over the raw bytes as delivered.
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
			return
		}

		evt, err := cfg.Verifier.Verify(raw, c.GetHeader(billing.SignatureHeader))
		if err != nil {
			if errors.Is(err, billing.ErrSignature) {
				log.Warn("rejected webhook with bad signature", zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_signature"})
				return
			}
			log.Warn("rejected malformed webhook payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_payload"})
			return
		}

		if err := cfg.Engine.Process(ctx, evt); err != nil {
			if errors.Is(err, billing.ErrMalformedPayload) {
				log.Warn("rejected event with malformed object",
					zap.String("event_id", evt.ID), zap.Error(err))
				c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_payload"})
				return
			}
			// Persistence failed: signal the provider to redeliver.
			log.Error("event not persisted",
				zap.String("event_id", evt.ID),
				zap.String("event_type", evt.Type),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "event_not_persisted"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	})
}
