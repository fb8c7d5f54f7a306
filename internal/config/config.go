// Package config loads application configuration from the environment, with
// .env support for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	TableName      string
	NotifyQueueURL string

	WebhookSecret string
	// AllowUnverifiedWebhooks is the explicit opt-in for running without a
	// webhook secret. It is never the silent default.
	AllowUnverifiedWebhooks bool

	MetricsNamespace string
	LogLevel         string

	RunLocal   bool
	ListenAddr string
}

// Load reads configuration from environment variables and an optional .env.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		TableName:               getenv("TABLE_NAME", "coachden"),
		NotifyQueueURL:          getenv("NOTIFY_QUEUE_URL", ""),
		WebhookSecret:           getenv("BILLING_WEBHOOK_SECRET", ""),
		AllowUnverifiedWebhooks: getenvBool("ALLOW_UNVERIFIED_WEBHOOKS", false),
		MetricsNamespace:        getenv("METRICS_NAMESPACE", "Coachden/Billing"),
		LogLevel:                getenv("LOG_LEVEL", "info"),
		RunLocal:                getenvBool("RUN_LOCAL", false),
		ListenAddr:              getenv("LISTEN_ADDR", ":8080"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
