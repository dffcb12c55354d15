// Package bootstrap wires the evaluator's collaborators from configuration.
// Both entry points (the scheduled Lambda and the HTTP trigger) build their
// orchestrator here so they evaluate with identical dependencies.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lightwatch/internal/alerts"
	"lightwatch/internal/config"
	"lightwatch/internal/db"
	"lightwatch/internal/external"
	"lightwatch/internal/metrics"
	"lightwatch/internal/push"
	"lightwatch/internal/security"
	"lightwatch/internal/solar"
	"lightwatch/internal/types"
)

const maxWebhookRedirects = 3

// Components holds what an entry point needs after wiring.
type Components struct {
	Pool         *pgxpool.Pool
	Orchestrator *alerts.Orchestrator
}

// Close releases the database pool.
func (c *Components) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// Build opens the database pool and assembles an orchestrator from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.Database.URL.Unmask(),
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	publisher, err := NewMetricPublisher(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	orch, err := NewOrchestrator(cfg, pool, publisher, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Components{Pool: pool, Orchestrator: orch}, nil
}

// NewOrchestrator assembles an orchestrator over the given connection.
// publisher may be nil.
func NewOrchestrator(cfg *config.Config, conn db.DBTX, publisher alerts.MetricPublisher, logger *slog.Logger) (*alerts.Orchestrator, error) {
	subs := db.NewSubscriptionRepository(conn)

	ocfg := alerts.OrchestratorConfig{
		Rules:                  db.NewRuleRepository(conn),
		Preferences:            db.NewPreferenceRepository(conn),
		Weather:                NewWeatherProvider(cfg, logger),
		Push:                   NewPushTransport(cfg, subs, logger),
		History:                db.NewHistoryRepository(conn),
		Solar:                  solar.NewCalculator(),
		Locker:                 db.NewJobLockRepository(conn),
		Clock:                  types.RealClock{},
		Logger:                 logger,
		MaxConcurrentLocations: cfg.Evaluator.MaxConcurrentLocations,
		DefaultTimezone:        cfg.DefaultLocation(),
		CachePreferences:       cfg.Evaluator.CachePreferences,
		LockTTL:                cfg.Evaluator.LockTTL,
		WorkerID:               WorkerID(),
	}
	if publisher != nil {
		ocfg.Metrics = publisher
	}
	return alerts.NewOrchestrator(ocfg)
}

// NewWeatherProvider returns the Open-Meteo client, or a stub in test mode.
func NewWeatherProvider(cfg *config.Config, logger *slog.Logger) alerts.WeatherProvider {
	if cfg.IsTestMode {
		logger.Warn("test mode: using stub weather provider")
		return external.NewStubWeatherProvider(logger)
	}

	policy := external.DefaultRetryPolicy()
	policy.MaxRetries = cfg.Weather.MaxRetries
	base := external.NewBaseClient(
		&http.Client{Timeout: cfg.Weather.Timeout},
		"open-meteo",
		policy,
		cfg.Weather.UserAgent,
	)
	return external.NewOpenMeteoClient(base, cfg.Weather.BaseURL)
}

// NewPushTransport returns the subscription-backed transport, or a stub in
// test mode.
func NewPushTransport(cfg *config.Config, subs push.SubscriptionStore, logger *slog.Logger) alerts.PushTransport {
	if cfg.IsTestMode {
		logger.Warn("test mode: using stub push transport")
		return external.NewStubPushTransport(logger)
	}

	httpClient := &http.Client{Timeout: cfg.Push.Timeout}
	if !cfg.Push.AllowPrivateTargets {
		httpClient = security.NewGuard(nil).NewHTTPClient(cfg.Push.Timeout, maxWebhookRedirects)
	}
	webhookClient := external.NewBaseClient(
		httpClient,
		"push-webhook",
		external.DefaultRetryPolicy(),
		cfg.Push.UserAgent,
	)
	senders := map[types.SubscriptionKind]push.Sender{
		types.SubscriptionShoutrrr: push.NewShoutrrrSender(cfg.Push.Timeout),
		types.SubscriptionWebhook:  push.NewWebhookSender(webhookClient, types.RealClock{}),
	}
	return push.NewTransport(subs, senders, logger)
}

// NewMetricPublisher returns a CloudWatch publisher, or nil when metrics are
// disabled. AWS_ENDPOINT_URL points the client at LocalStack.
func NewMetricPublisher(ctx context.Context, cfg *config.Config) (alerts.MetricPublisher, error) {
	if !cfg.Observability.EnableMetrics {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return metrics.NewCyclePublisher(client, cfg.Observability.MetricNamespace, cfg.Environment), nil
}

// WorkerID identifies this process in the cycle lock table.
func WorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + "-" + uuid.NewString()[:8]
}
