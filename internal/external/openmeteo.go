package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lightwatch/internal/types"
)

// DefaultOpenMeteoURL is the public forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

const openMeteoCurrentFields = "temperature_2m,cloud_cover,wind_speed_10m,visibility,precipitation_probability,weather_code"

// OpenMeteoClient fetches current conditions from the Open-Meteo forecast API.
// It implements alerts.WeatherProvider.
type OpenMeteoClient struct {
	base    *BaseClient
	baseURL string
}

// NewOpenMeteoClient creates a client against baseURL. An empty baseURL uses
// DefaultOpenMeteoURL.
func NewOpenMeteoClient(base *BaseClient, baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoClient{base: base, baseURL: baseURL}
}

type openMeteoResponse struct {
	Current *struct {
		Time                     int64    `json:"time"`
		Temperature              float64  `json:"temperature_2m"`
		CloudCover               float64  `json:"cloud_cover"`
		WindSpeed                float64  `json:"wind_speed_10m"`
		Visibility               *float64 `json:"visibility"`
		PrecipitationProbability *float64 `json:"precipitation_probability"`
		WeatherCode              int      `json:"weather_code"`
	} `json:"current"`
}

// GetCurrentWeather returns the current snapshot for a coordinate. Wind speed
// is requested in km/h and visibility is converted from metres to kilometres.
// Variables the model does not provide for the point read as zero.
func (c *OpenMeteoClient) GetCurrentWeather(ctx context.Context, lat, lng float64) (*types.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', 4, 64))
	q.Set("current", openMeteoCurrentFields)
	q.Set("wind_speed_unit", "kmh")
	q.Set("timeformat", "unixtime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build weather request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError(resp, types.ErrCodeUpstreamWeather, "open-meteo")
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather, "failed to decode open-meteo response", err)
	}
	if body.Current == nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather, "open-meteo response has no current block", nil)
	}

	cur := body.Current
	snap := &types.WeatherSnapshot{
		CloudCover:  cur.CloudCover,
		WindSpeed:   cur.WindSpeed,
		Temperature: cur.Temperature,
		Description: describeWeatherCode(cur.WeatherCode),
		ObservedAt:  time.Unix(cur.Time, 0).UTC(),
	}
	if cur.Visibility != nil {
		snap.Visibility = *cur.Visibility / 1000
	}
	if cur.PrecipitationProbability != nil {
		snap.PrecipitationProbability = *cur.PrecipitationProbability
	}
	return snap, nil
}

// describeWeatherCode maps a WMO weather interpretation code to text.
func describeWeatherCode(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Fog"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61, 63, 65:
		return "Rain"
	case 66, 67:
		return "Freezing rain"
	case 71, 73, 75, 77:
		return "Snow"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return fmt.Sprintf("Weather code %d", code)
	}
}
