package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionsSnapshot_ValueThenScan(t *testing.T) {
	at := time.Date(2026, 6, 21, 4, 11, 0, 0, time.UTC)
	snap := SnapshotOf(WeatherSnapshot{CloudCover: 12, WindSpeed: 4.5, Visibility: 24, Description: "Mainly clear"}).
		WithEvent(SolarEvent{Name: EventSunrise, At: at})

	v, err := snap.Value()
	require.NoError(t, err)

	var got ConditionsSnapshot
	require.NoError(t, got.Scan(v))
	assert.Equal(t, "sunrise", got.Event)
	require.NotNil(t, got.EventTime)
	assert.True(t, at.Equal(*got.EventTime))
	assert.Equal(t, 12.0, got.CloudCover)
}

func TestConditionsSnapshot_ScanVariants(t *testing.T) {
	var s ConditionsSnapshot
	require.NoError(t, s.Scan(`{"cloud_cover":55,"description":"Overcast"}`))
	assert.Equal(t, 55.0, s.CloudCover)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, ConditionsSnapshot{}, s)

	assert.Error(t, s.Scan(42))
}

func TestConditionsSnapshot_OmitsEventForNonSolarRules(t *testing.T) {
	v, err := SnapshotOf(WeatherSnapshot{CloudCover: 10}).Value()
	require.NoError(t, err)
	assert.NotContains(t, string(v.([]byte)), "event")
}
