package alerts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"lightwatch/internal/types"
)

// Reasons reported by the matcher when a rule does not fire.
const (
	ReasonOutsideWindow    = "Outside time window"
	ReasonNotScheduled     = "Not scheduled for today"
	ReasonNotNearGolden    = "not near golden hour"
	ReasonWeatherUnsuited  = "weather conditions not suitable"
	ReasonAllConditionsMet = "All conditions met"
)

// MatchResult is the matcher's verdict for one rule.
type MatchResult struct {
	Matched bool
	Reason  string
	// Snapshot is always populated, even when the rule is filtered out.
	Snapshot types.ConditionsSnapshot
}

// Matcher decides whether a rule's conditions hold. It performs no I/O.
type Matcher struct {
	defaultZone *time.Location
}

// NewMatcher returns a Matcher that evaluates time filters in the location's
// timezone, or in defaultZone when the location has none.
func NewMatcher(defaultZone *time.Location) *Matcher {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return &Matcher{defaultZone: defaultZone}
}

// Match evaluates rule against the current weather and the day's solar
// events. The time window is checked first, then the day of week, then the
// type-specific conditions. An error is returned only for a conditions
// variant the matcher does not know.
func (m *Matcher) Match(rule types.AlertRule, weather types.WeatherSnapshot, solar types.SolarEventSet, now time.Time) (MatchResult, error) {
	snapshot := types.SnapshotOf(weather)
	local := now.In(resolveZone(rule.Location.Timezone, m.defaultZone))

	if rule.TimeWindow != nil && !rule.TimeWindow.Contains(local.Hour()) {
		return MatchResult{Reason: ReasonOutsideWindow, Snapshot: snapshot}, nil
	}
	if !rule.ScheduledOn(local.Weekday()) {
		return MatchResult{Reason: ReasonNotScheduled, Snapshot: snapshot}, nil
	}

	switch c := rule.Conditions.(type) {
	case types.GoldenHourConditions:
		return matchGoldenHour(c, rule.LeadTime(), weather, solar, now, snapshot), nil
	case types.ClearSkiesConditions:
		return matchClearSkies(c, weather, snapshot), nil
	case types.LowWindConditions:
		return matchLowWind(c, weather, snapshot), nil
	case types.CustomConditions:
		return matchCustom(c, weather, snapshot), nil
	default:
		return MatchResult{Snapshot: snapshot}, types.NewAppError(types.ErrCodeValidationAlertType,
			fmt.Sprintf("no matcher for conditions %T on alert type %q", rule.Conditions, rule.AlertType), nil)
	}
}

func matchGoldenHour(c types.GoldenHourConditions, lead time.Duration, w types.WeatherSnapshot, solar types.SolarEventSet, now time.Time, snapshot types.ConditionsSnapshot) MatchResult {
	for _, event := range solar.Ordered() {
		if event.At.IsZero() {
			continue
		}
		until := event.At.Sub(now)
		if until <= 0 || until > lead {
			continue
		}

		annotated := snapshot.WithEvent(event)
		if w.CloudCover <= c.CloudCeiling() && w.PrecipitationProbability <= c.PrecipitationCeiling() {
			return MatchResult{
				Matched:  true,
				Reason:   fmt.Sprintf("%s in %d minutes", event.Name, int(math.Round(until.Minutes()))),
				Snapshot: annotated,
			}
		}
		return MatchResult{Reason: ReasonWeatherUnsuited, Snapshot: annotated}
	}
	return MatchResult{Reason: ReasonNotNearGolden, Snapshot: snapshot}
}

func matchClearSkies(c types.ClearSkiesConditions, w types.WeatherSnapshot, snapshot types.ConditionsSnapshot) MatchResult {
	ceiling := c.CloudCeiling()
	if w.CloudCover <= ceiling {
		return MatchResult{
			Matched:  true,
			Reason:   fmt.Sprintf("Cloud cover %.0f%% is at or below %.0f%%", w.CloudCover, ceiling),
			Snapshot: snapshot,
		}
	}
	return MatchResult{
		Reason:   fmt.Sprintf("Cloud cover %.0f%% exceeds %.0f%%", w.CloudCover, ceiling),
		Snapshot: snapshot,
	}
}

func matchLowWind(c types.LowWindConditions, w types.WeatherSnapshot, snapshot types.ConditionsSnapshot) MatchResult {
	ceiling := c.WindCeiling()
	if w.WindSpeed <= ceiling {
		return MatchResult{
			Matched:  true,
			Reason:   fmt.Sprintf("Wind speed %.1f km/h is at or below %.1f km/h", w.WindSpeed, ceiling),
			Snapshot: snapshot,
		}
	}
	return MatchResult{
		Reason:   fmt.Sprintf("Wind speed %.1f km/h exceeds %.1f km/h", w.WindSpeed, ceiling),
		Snapshot: snapshot,
	}
}

func matchCustom(c types.CustomConditions, w types.WeatherSnapshot, snapshot types.ConditionsSnapshot) MatchResult {
	var failures []string

	if c.MaxCloudCover != nil && w.CloudCover > *c.MaxCloudCover {
		failures = append(failures, fmt.Sprintf("Cloud cover %.0f%% exceeds max %.0f%%", w.CloudCover, *c.MaxCloudCover))
	}
	if c.MaxWindSpeed != nil && w.WindSpeed > *c.MaxWindSpeed {
		failures = append(failures, fmt.Sprintf("Wind speed %.1f km/h exceeds max %.1f km/h", w.WindSpeed, *c.MaxWindSpeed))
	}
	if c.MaxPrecipitationProbability != nil && w.PrecipitationProbability > *c.MaxPrecipitationProbability {
		failures = append(failures, fmt.Sprintf("Precipitation probability %.0f%% exceeds max %.0f%%",
			w.PrecipitationProbability, *c.MaxPrecipitationProbability))
	}
	if c.MinVisibility != nil && w.Visibility < *c.MinVisibility {
		failures = append(failures, fmt.Sprintf("Visibility %.1f km below min %.1f km", w.Visibility, *c.MinVisibility))
	}
	if c.MinTemperature != nil && w.Temperature < *c.MinTemperature {
		failures = append(failures, fmt.Sprintf("Temperature %.1f°C below min %.1f°C", w.Temperature, *c.MinTemperature))
	}
	if c.MaxTemperature != nil && w.Temperature > *c.MaxTemperature {
		failures = append(failures, fmt.Sprintf("Temperature %.1f°C above max %.1f°C", w.Temperature, *c.MaxTemperature))
	}

	if len(failures) > 0 {
		return MatchResult{Reason: strings.Join(failures, "; "), Snapshot: snapshot}
	}
	return MatchResult{Matched: true, Reason: ReasonAllConditionsMet, Snapshot: snapshot}
}
