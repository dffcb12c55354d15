package external

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightwatch/internal/types"
)

const openMeteoTestURL = "https://weather.test/v1/forecast"

const openMeteoSuccess = `{
  "latitude": 47.6,
  "longitude": -122.3,
  "current": {
    "time": 1781964000,
    "interval": 900,
    "temperature_2m": 18.4,
    "cloud_cover": 12,
    "wind_speed_10m": 7.2,
    "visibility": 24140,
    "precipitation_probability": 5,
    "weather_code": 1
  }
}`

func newMockedOpenMeteo(t *testing.T) (*OpenMeteoClient, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	base := newTestClient(t, RetryPolicy{MaxRetries: 1, MinWait: time.Millisecond, MaxWait: time.Millisecond})
	base.client = &http.Client{Transport: transport}
	return NewOpenMeteoClient(base, openMeteoTestURL), transport
}

func TestOpenMeteo_GetCurrentWeather(t *testing.T) {
	client, transport := newMockedOpenMeteo(t)

	var query map[string]string
	transport.RegisterResponder(http.MethodGet, openMeteoTestURL, func(req *http.Request) (*http.Response, error) {
		query = map[string]string{}
		for k := range req.URL.Query() {
			query[k] = req.URL.Query().Get(k)
		}
		return httpmock.NewStringResponse(http.StatusOK, openMeteoSuccess), nil
	})

	snap, err := client.GetCurrentWeather(context.Background(), 47.6062, -122.3321)
	require.NoError(t, err)

	assert.InDelta(t, 12, snap.CloudCover, 0.001)
	assert.InDelta(t, 7.2, snap.WindSpeed, 0.001)
	assert.InDelta(t, 24.14, snap.Visibility, 0.001)
	assert.InDelta(t, 5, snap.PrecipitationProbability, 0.001)
	assert.InDelta(t, 18.4, snap.Temperature, 0.001)
	assert.Equal(t, "Mainly clear", snap.Description)
	assert.Equal(t, time.Unix(1781964000, 0).UTC(), snap.ObservedAt)

	assert.Equal(t, "47.6062", query["latitude"])
	assert.Equal(t, "-122.3321", query["longitude"])
	assert.Equal(t, "kmh", query["wind_speed_unit"])
	assert.Equal(t, "unixtime", query["timeformat"])
	assert.Contains(t, query["current"], "cloud_cover")
	assert.Contains(t, query["current"], "precipitation_probability")
}

func TestOpenMeteo_MissingOptionalVariables(t *testing.T) {
	client, transport := newMockedOpenMeteo(t)
	transport.RegisterResponder(http.MethodGet, openMeteoTestURL, httpmock.NewStringResponder(http.StatusOK,
		`{"current":{"time":1781964000,"temperature_2m":3,"cloud_cover":90,"wind_speed_10m":20,"weather_code":3}}`))

	snap, err := client.GetCurrentWeather(context.Background(), 78.2, 15.6)
	require.NoError(t, err)
	assert.Zero(t, snap.Visibility)
	assert.Zero(t, snap.PrecipitationProbability)
	assert.Equal(t, "Overcast", snap.Description)
}

func TestOpenMeteo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   types.ErrorCode
		calls  int
	}{
		{"bad request", http.StatusBadRequest, `{"error":true,"reason":"Latitude must be in range"}`, types.ErrCodeUpstreamWeather, 1},
		{"server error retried", http.StatusBadGateway, ``, types.ErrCodeUpstreamUnavailable, 2},
		{"rate limited", http.StatusTooManyRequests, ``, types.ErrCodeUpstreamRateLimited, 2},
		{"malformed body", http.StatusOK, `{not json`, types.ErrCodeUpstreamWeather, 1},
		{"no current block", http.StatusOK, `{"latitude":1}`, types.ErrCodeUpstreamWeather, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, transport := newMockedOpenMeteo(t)
			transport.RegisterResponder(http.MethodGet, openMeteoTestURL, httpmock.NewStringResponder(tt.status, tt.body))

			snap, err := client.GetCurrentWeather(context.Background(), 1, 2)
			require.Error(t, err)
			assert.Nil(t, snap)

			var appErr *types.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.want, appErr.Code)
			assert.Equal(t, tt.calls, transport.GetTotalCallCount())
		})
	}
}

func TestDescribeWeatherCode(t *testing.T) {
	assert.Equal(t, "Clear sky", describeWeatherCode(0))
	assert.Equal(t, "Thunderstorm with hail", describeWeatherCode(99))
	assert.Equal(t, "Weather code 42", describeWeatherCode(42))
}
