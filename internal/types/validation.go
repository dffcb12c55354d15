package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRule checks the invariants the evaluator relies on: a supported
// alert type, conditions of the matching variant, hours within 0..23, weekdays
// within 0..6 and coordinates on the globe. Rules are validated upstream on
// write; this guards against rows edited out of band.
func ValidateRule(rule AlertRule) error {
	if !rule.AlertType.Valid() {
		return NewAppError(ErrCodeValidationAlertType,
			fmt.Sprintf("unsupported alert type %q", rule.AlertType), nil)
	}
	if rule.Conditions == nil {
		return NewAppError(ErrCodeValidationInvalidConditions, "conditions are missing", nil)
	}
	if rule.Conditions.AlertType() != rule.AlertType {
		return NewAppError(ErrCodeValidationInvalidConditions,
			fmt.Sprintf("conditions of type %q do not match alert type %q", rule.Conditions.AlertType(), rule.AlertType), nil)
	}
	if err := structValidator().Struct(rule); err != nil {
		return translateValidation(err)
	}
	if err := structValidator().Struct(rule.Conditions); err != nil {
		return translateValidation(err)
	}
	return nil
}

// ValidatePreferences checks stored notification preferences.
func ValidatePreferences(p NotificationPreferences) error {
	if err := structValidator().Struct(p); err != nil {
		return translateValidation(err)
	}
	return nil
}

func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError(ErrCodeValidationInvalidRequest, err.Error(), err)
	}

	code := ErrCodeValidationInvalidConditions
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		switch {
		case strings.Contains(fe.Namespace(), "TimeWindow"), strings.Contains(fe.Namespace(), "QuietHours"):
			code = ErrCodeValidationTimeWindow
		case strings.Contains(fe.Namespace(), "DaysOfWeek"):
			code = ErrCodeValidationDaysOfWeek
		case fe.Field() == "Lat":
			code = ErrCodeValidationInvalidLat
		case fe.Field() == "Lng":
			code = ErrCodeValidationInvalidLon
		}
	}
	return NewAppErrorWithDetails(code, strings.Join(fields, "; "), err, map[string]any{"fields": fields})
}
