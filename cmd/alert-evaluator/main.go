// Package main is the entrypoint for the Alert Evaluator Lambda function.
//
// An EventBridge schedule invokes it every few minutes. Each invocation runs
// one evaluation cycle: every active rule is matched against current weather
// and solar events, and users are notified subject to cooldown and their
// notification preferences.
//
// With APP_ENV=local the handler reads one invocation payload from stdin
// (an empty stdin means "now, not verbose") and prints the result, so a cycle
// can be run from a shell without the Lambda runtime.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"

	"lightwatch/internal/alerts"
	"lightwatch/internal/bootstrap"
	"lightwatch/internal/config"
)

// cycleRunner is the slice of *alerts.Orchestrator the handler uses.
type cycleRunner interface {
	Invoke(ctx context.Context, in alerts.InvocationInput) (*alerts.InvocationResult, error)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.Info("alert evaluator initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"test_mode", cfg.IsTestMode,
	)

	ctx := context.Background()
	comps, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire evaluator", "error", err)
		os.Exit(1)
	}

	handler := newHandler(comps.Orchestrator, logger)

	if cfg.Environment == "local" {
		err := runLocal(handler, os.Stdin, os.Stdout)
		comps.Close()
		if err != nil {
			logger.Error("local invocation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(handler)
}

// newHandler wraps the orchestrator for the Lambda runtime. A cycle skipped
// because another one holds the lock is a successful no-op invocation.
func newHandler(runner cycleRunner, logger *slog.Logger) func(ctx context.Context, in alerts.InvocationInput) (*alerts.InvocationResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, in alerts.InvocationInput) (*alerts.InvocationResult, error) {
		logger.InfoContext(ctx, "alert evaluator invoked",
			"reference_time", in.ReferenceTime,
			"verbose", in.Verbose,
		)

		res, err := runner.Invoke(ctx, in)
		if errors.Is(err, alerts.ErrCycleInProgress) {
			logger.InfoContext(ctx, "cycle skipped, previous cycle still running")
			return res, nil
		}
		if err != nil {
			logger.ErrorContext(ctx, "evaluation cycle failed", "error", err)
			return res, fmt.Errorf("alert evaluation failed: %w", err)
		}

		logger.InfoContext(ctx, "evaluation cycle complete",
			"cycle_id", res.CycleID,
			"checked", res.Checked,
			"triggered", res.Triggered,
			"errors", res.Errors,
		)
		return res, nil
	}
}

// runLocal decodes one payload from in, runs the handler until it finishes or
// the process is interrupted, and writes the JSON result to out.
func runLocal(handler func(context.Context, alerts.InvocationInput) (*alerts.InvocationResult, error), in io.Reader, out io.Writer) error {
	var input alerts.InvocationInput
	if err := json.NewDecoder(in).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode invocation payload: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := handler(ctx, input)
	if res != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return fmt.Errorf("encode result: %w", encErr)
		}
	}
	return err
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With("service", cfg.Service)
}
