package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Classifier backends selectable via -classifier-backend.
const (
	BackendBayes  = "bayes"
	BackendClaude = "claude"
)

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds           int
	ShutdownBudgetSeconds  int
	APIPort                int
	DatabaseURL            string
	RedisURL               string
	ClassifierBackend      string
	TrainingDataPath       string
	ClaudeAPIKey           string
	ClaudeModel            string
	DeliveryTimeoutSeconds int
	APIToken               string
	SlackWebhookURL        string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.RedisURL, "redis-url", "", "Redis connection URL for the latest-incident cache (empty = no cache)")
	fs.StringVar(&c.ClassifierBackend, "classifier-backend", BackendBayes, "classification backend: bayes or claude")
	fs.StringVar(&c.TrainingDataPath, "training-data-path", "", "CSV training corpus for the bayes backend (empty = built-in corpus)")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for the Claude classification backend")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use")
	fs.IntVar(&c.DeliveryTimeoutSeconds, "delivery-timeout-seconds", 5, "per-subscriber broadcast delivery timeout (1..60)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token guarding the submit endpoint (empty = no auth)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for high and critical incident notifications")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Per-subscriber delivery timeout bounds
	if c.DeliveryTimeoutSeconds <= 0 || c.DeliveryTimeoutSeconds > 60 {
		errs = append(errs, fmt.Errorf("invalid DELIVERY_TIMEOUT_SECONDS %d (must be 1..60)", c.DeliveryTimeoutSeconds))
	}

	// Classifier backend must be a known value
	switch c.ClassifierBackend {
	case BackendBayes:
	case BackendClaude:
		// Claude backend needs credentials
		if c.ClaudeAPIKey == "" {
			errs = append(errs, errors.New("CLAUDE_API_KEY is required for the claude backend"))
		}
		if c.ClaudeModel == "" {
			errs = append(errs, errors.New("CLAUDE_MODEL is required for the claude backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid CLASSIFIER_BACKEND %q (must be bayes or claude)", c.ClassifierBackend))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
