package types

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_RequestAndCycleIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetCycleID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithCycleID(ctx, "cycle-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "cycle-1", GetCycleID(ctx))
}

func TestContext_LoggerFallback(t *testing.T) {
	fallback := slog.Default()
	assert.Same(t, fallback, LoggerFromContext(context.Background(), fallback))

	scoped := fallback.With("request_id", "req-1")
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, LoggerFromContext(ctx, fallback))
}
