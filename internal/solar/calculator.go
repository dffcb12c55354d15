// Package solar computes the sun events that golden hour rules key off.
package solar

import (
	"math"
	"time"

	"github.com/sj14/astral/pkg/astral"

	"lightwatch/internal/types"
)

// Calculator computes SolarEventSets with the astral algorithms.
type Calculator struct{}

// NewCalculator returns a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate returns sunrise, sunset, the end of the morning golden hour and
// the start of the evening golden hour for the calendar day that contains at
// at the given coordinates. The day is the location's mean solar day, so the
// result does not depend on the server's timezone or on how far the
// longitude is from Greenwich.
//
// Events the sun never reaches that day (polar day or polar night) are left
// as zero times.
func (c *Calculator) Calculate(lat, lng float64, at time.Time) types.SolarEventSet {
	obs := astral.Observer{Latitude: lat, Longitude: lng}
	day := solarDate(at, lng)

	return types.SolarEventSet{
		Sunrise: onSolarDay(day, lng, func(d time.Time) (time.Time, error) {
			return astral.Sunrise(obs, d)
		}),
		Sunset: onSolarDay(day, lng, func(d time.Time) (time.Time, error) {
			return astral.Sunset(obs, d)
		}),
		GoldenHourEnd: onSolarDay(day, lng, func(d time.Time) (time.Time, error) {
			_, end, err := astral.GoldenHour(obs, d, astral.SunDirectionRising)
			return end, err
		}),
		GoldenHourStart: onSolarDay(day, lng, func(d time.Time) (time.Time, error) {
			start, _, err := astral.GoldenHour(obs, d, astral.SunDirectionSetting)
			return start, err
		}),
	}
}

// solarOffset is the mean solar time offset from UTC at a longitude.
func solarOffset(lng float64) time.Duration {
	return time.Duration(math.Round(lng / 15 * float64(time.Hour)))
}

// solarDate returns midnight UTC of the calendar date that at falls on in
// local mean solar time.
func solarDate(at time.Time, lng float64) time.Time {
	local := at.UTC().Add(solarOffset(lng))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// onSolarDay evaluates fn for the neighbouring UTC dates and keeps the
// instant whose solar-local date is day. astral anchors events to UTC dates,
// which for far east or west longitudes puts an evening event on the next
// UTC date.
func onSolarDay(day time.Time, lng float64, fn func(time.Time) (time.Time, error)) time.Time {
	for _, offset := range []int{0, -1, 1} {
		t, err := fn(day.AddDate(0, 0, offset))
		if err != nil || t.IsZero() {
			continue
		}
		if solarDate(t, lng).Equal(day) {
			return t.UTC()
		}
	}
	return time.Time{}
}
