// Package config defines the process configuration for the alert evaluator
// and its HTTP trigger. Configuration is read once at startup from the
// environment (with an optional .env file underneath) and is immutable
// thereafter. Missing or malformed values fail startup.
package config

import (
	"log/slog"
	"time"

	"lightwatch/internal/types"
)

// SecretString is an alias for types.SecretString so secrets in config are
// redacted when logged.
type SecretString = types.SecretString

// Config is the top-level configuration. Components receive only the section
// they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"lightwatch-evaluator"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	// IsTestMode swaps the weather provider and push transport for stubs.
	IsTestMode bool `envconfig:"IS_TEST_MODE" default:"false"`

	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Weather       WeatherConfig
	Push          PushConfig
	Evaluator     EvaluatorConfig
	Observability ObservabilityConfig

	// Build is injected via ldflags, not the environment.
	Build BuildInfo
}

// ServerConfig holds the HTTP trigger settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// CronTokenHash is the bcrypt hash of the bearer token the scheduler
	// presents. When empty, the trigger endpoint rejects every request.
	CronTokenHash SecretString `envconfig:"CRON_TOKEN_HASH"`
	// RequestTimeout bounds one triggered cycle.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5m" validate:"gt=0"`
}

// DatabaseConfig holds the connection string and pool tuning.
type DatabaseConfig struct {
	URL      SecretString `envconfig:"DATABASE_URL" validate:"required,url"`
	MaxConns int32        `envconfig:"DB_MAX_CONNS" default:"10" validate:"min=1"`
}

// AWSConfig holds the region and the LocalStack endpoint override.
type AWSConfig struct {
	Region      string `envconfig:"AWS_REGION" default:"us-east-1"`
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// WeatherConfig configures the Open-Meteo client.
type WeatherConfig struct {
	BaseURL    string        `envconfig:"WEATHER_BASE_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"required,url"`
	Timeout    time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s" validate:"gt=0"`
	MaxRetries int           `envconfig:"WEATHER_MAX_RETRIES" default:"2" validate:"min=0,max=5"`
	UserAgent  string        `envconfig:"WEATHER_USER_AGENT" default:"Lightwatch/1.0"`
}

// PushConfig configures outbound push delivery.
type PushConfig struct {
	Timeout   time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s" validate:"gt=0"`
	UserAgent string        `envconfig:"PUSH_USER_AGENT" default:"Lightwatch-Webhook/1.0"`
	// AllowPrivateTargets lets webhooks reach loopback and private networks.
	// Only for local development against a receiver on the same host.
	AllowPrivateTargets bool `envconfig:"PUSH_ALLOW_PRIVATE_TARGETS" default:"false"`
}

// EvaluatorConfig tunes the evaluation cycle.
type EvaluatorConfig struct {
	MaxConcurrentLocations int           `envconfig:"EVAL_MAX_CONCURRENT_LOCATIONS" default:"4" validate:"min=1,max=64"`
	DefaultTimezone        string        `envconfig:"EVAL_DEFAULT_TIMEZONE" default:"UTC" validate:"required,timezone"`
	CachePreferences       bool          `envconfig:"EVAL_CACHE_PREFERENCES" default:"true"`
	LockTTL                time.Duration `envconfig:"EVAL_LOCK_TTL" default:"10m" validate:"gt=0"`
}

// ObservabilityConfig holds metric settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"Lightwatch/Evaluator"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// SlogLevel maps LogLevel onto a slog level. Unknown values read as info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultLocation resolves Evaluator.DefaultTimezone. Validation has already
// checked the name, so the UTC fallback only covers a hand-built Config.
func (c *Config) DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(c.Evaluator.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrParsing indicates an environment value could not be parsed into
	// its target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the populated struct failed validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)
