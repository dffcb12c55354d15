package types

import (
	"encoding/json"
	"fmt"
)

// Conditions is the type-specific threshold payload of an AlertRule.
// The concrete type is selected by the rule's AlertType; only the four
// variants declared in this file implement it.
type Conditions interface {
	AlertType() AlertType
	sealed()
}

// Defaults applied when a rule omits its thresholds.
const (
	DefaultGoldenHourMaxCloudCover    = 70.0
	DefaultGoldenHourMaxPrecipitation = 30.0
	DefaultClearSkiesMaxCloudCover    = 30.0
	DefaultLowWindMaxSpeed            = 10.0
	DefaultLeadTimeMinutes            = 30
)

// GoldenHourConditions holds the weather ceiling used once a solar event is
// within the rule's lead time.
type GoldenHourConditions struct {
	MaxCloudCover               *float64 `json:"max_cloud_cover,omitempty" validate:"omitempty,min=0,max=100"`
	MaxPrecipitationProbability *float64 `json:"max_precipitation_probability,omitempty" validate:"omitempty,min=0,max=100"`
}

// ClearSkiesConditions matches when cloud cover is at or below the ceiling.
type ClearSkiesConditions struct {
	MaxCloudCover *float64 `json:"max_cloud_cover,omitempty" validate:"omitempty,min=0,max=100"`
}

// LowWindConditions matches when wind speed (km/h) is at or below the ceiling.
type LowWindConditions struct {
	MaxWindSpeed *float64 `json:"max_wind_speed,omitempty" validate:"omitempty,min=0"`
}

// CustomConditions is a conjunction over whichever thresholds are present.
type CustomConditions struct {
	MaxCloudCover               *float64 `json:"max_cloud_cover,omitempty" validate:"omitempty,min=0,max=100"`
	MaxWindSpeed                *float64 `json:"max_wind_speed,omitempty" validate:"omitempty,min=0"`
	MaxPrecipitationProbability *float64 `json:"max_precipitation_probability,omitempty" validate:"omitempty,min=0,max=100"`
	MinVisibility               *float64 `json:"min_visibility,omitempty" validate:"omitempty,min=0"`
	MinTemperature              *float64 `json:"min_temperature,omitempty"`
	MaxTemperature              *float64 `json:"max_temperature,omitempty"`
}

func (GoldenHourConditions) AlertType() AlertType { return AlertTypeGoldenHour }
func (ClearSkiesConditions) AlertType() AlertType { return AlertTypeClearSkies }
func (LowWindConditions) AlertType() AlertType    { return AlertTypeLowWind }
func (CustomConditions) AlertType() AlertType     { return AlertTypeCustom }

func (GoldenHourConditions) sealed() {}
func (ClearSkiesConditions) sealed() {}
func (LowWindConditions) sealed()    {}
func (CustomConditions) sealed()     {}

// CloudCeiling returns the configured cloud ceiling or the golden hour default.
func (c GoldenHourConditions) CloudCeiling() float64 {
	return floatOr(c.MaxCloudCover, DefaultGoldenHourMaxCloudCover)
}

// PrecipitationCeiling returns the configured precipitation ceiling or the default.
func (c GoldenHourConditions) PrecipitationCeiling() float64 {
	return floatOr(c.MaxPrecipitationProbability, DefaultGoldenHourMaxPrecipitation)
}

// CloudCeiling returns the configured cloud ceiling or the clear skies default.
func (c ClearSkiesConditions) CloudCeiling() float64 {
	return floatOr(c.MaxCloudCover, DefaultClearSkiesMaxCloudCover)
}

// WindCeiling returns the configured wind ceiling or the low wind default.
func (c LowWindConditions) WindCeiling() float64 {
	return floatOr(c.MaxWindSpeed, DefaultLowWindMaxSpeed)
}

// DecodeConditions parses a stored conditions document using the alert type
// as the discriminator. An empty or null document yields the zero value of
// the variant, which means "use defaults" (or "no constraints" for custom).
func DecodeConditions(alertType AlertType, raw []byte) (Conditions, error) {
	var target Conditions
	switch alertType {
	case AlertTypeGoldenHour:
		c := GoldenHourConditions{}
		if err := unmarshalOptional(raw, &c); err != nil {
			return nil, err
		}
		target = c
	case AlertTypeClearSkies:
		c := ClearSkiesConditions{}
		if err := unmarshalOptional(raw, &c); err != nil {
			return nil, err
		}
		target = c
	case AlertTypeLowWind:
		c := LowWindConditions{}
		if err := unmarshalOptional(raw, &c); err != nil {
			return nil, err
		}
		target = c
	case AlertTypeCustom:
		c := CustomConditions{}
		if err := unmarshalOptional(raw, &c); err != nil {
			return nil, err
		}
		target = c
	default:
		return nil, NewAppError(ErrCodeValidationAlertType,
			fmt.Sprintf("unsupported alert type %q", alertType), nil)
	}
	return target, nil
}

// EncodeConditions serializes conditions for a JSONB column. Nil encodes as
// an empty object.
func EncodeConditions(c Conditions) ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

func unmarshalOptional(raw []byte, dest any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return NewAppError(ErrCodeValidationInvalidConditions, "conditions document is malformed", err)
	}
	return nil
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// Float returns a pointer to v. Handy for building optional thresholds.
func Float(v float64) *float64 { return &v }
