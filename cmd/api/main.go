package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/awsx"
	"github.com/coachden/coachden/internal/billing"
	"github.com/coachden/coachden/internal/config"
	"github.com/coachden/coachden/internal/handlers"
	"github.com/coachden/coachden/internal/logging"
	"github.com/coachden/coachden/internal/metrics"
	"github.com/coachden/coachden/internal/notify"
	"github.com/coachden/coachden/internal/repo"
)

func setupRouter(cfg handlers.WebhookConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterWebhookRoutes(r, cfg)

	return r
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	clients, err := awsx.NewClients(context.Background())
	if err != nil {
		log.Fatal("failed to init aws clients", zap.Error(err))
	}

	verifier, err := billing.NewVerifier(cfg.WebhookSecret, cfg.AllowUnverifiedWebhooks, log)
	if err != nil {
		log.Fatal("webhook verification misconfigured", zap.Error(err))
	}

	repos := repo.New(clients.DynamoDB, cfg.TableName, log)

	var notifier billing.Notifier
	if cfg.NotifyQueueURL != "" {
		notifier = notify.NewPublisher(clients.SQS, cfg.NotifyQueueURL, log)
	} else {
		log.Warn("NOTIFY_QUEUE_URL not set, member notifications disabled")
	}

	engine := billing.NewEngine(billing.EngineConfig{
		Repos:    repos,
		Notifier: notifier,
		Metrics:  metrics.NewPublisher(clients.CloudWatch, cfg.MetricsNamespace, log),
		Log:      log,
	})

	r := setupRouter(handlers.WebhookConfig{
		Verifier: verifier,
		Engine:   engine,
		Log:      log,
	})

	// if environment variable RUN_LOCAL is set to "true", run a local HTTP
	// server for development.
	if cfg.RunLocal {
		log.Info("running local server", zap.String("addr", cfg.ListenAddr))
		if err := r.Run(cfg.ListenAddr); err != nil {
			log.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
