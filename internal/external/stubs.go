package external

import (
	"context"
	"log/slog"
	"time"

	"lightwatch/internal/types"
)

// Stub implementations let the evaluator run in test mode or locally
// without reaching real upstreams. They log every call and return fixed,
// predictable values.

// StubWeatherProvider reports calm, clear conditions everywhere.
type StubWeatherProvider struct {
	logger *slog.Logger
}

// NewStubWeatherProvider creates a new StubWeatherProvider.
func NewStubWeatherProvider(logger *slog.Logger) *StubWeatherProvider {
	return &StubWeatherProvider{logger: logger}
}

func (s *StubWeatherProvider) GetCurrentWeather(ctx context.Context, lat, lng float64) (*types.WeatherSnapshot, error) {
	s.logger.InfoContext(ctx, "stub: GetCurrentWeather called", "lat", lat, "lng", lng)
	return &types.WeatherSnapshot{
		CloudCover:               10,
		WindSpeed:                5,
		Visibility:               20,
		PrecipitationProbability: 0,
		Temperature:              18,
		Description:              "Clear sky",
		ObservedAt:               time.Now().UTC().Truncate(15 * time.Minute),
	}, nil
}

// StubPushTransport accepts every payload without sending anything.
type StubPushTransport struct {
	logger *slog.Logger
}

// NewStubPushTransport creates a new StubPushTransport.
func NewStubPushTransport(logger *slog.Logger) *StubPushTransport {
	return &StubPushTransport{logger: logger}
}

func (s *StubPushTransport) Send(ctx context.Context, userID string, payload types.PushPayload) (bool, error) {
	s.logger.InfoContext(ctx, "stub: push Send called",
		"user_id", userID,
		"title", payload.Title,
		"tag", payload.Tag,
	)
	return true, nil
}
