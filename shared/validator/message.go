package validator

import (
	"errors"
	"localguide/shared/failure"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required":   "{field} is required",
		"gte":        "{field} must be greater than or equal to {param}",
		"lte":        "{field} must be less than or equal to {param}",
		"gt":         "{field} must be greater than {param}",
		"oneof":      "{field} must be one of {param}",
		"max":        "{field} must be at most {param}",
		"min":        "{field} must be at least {param}",
		"email":      "{field} must be a valid email address",
		"uuid":       "{field} must be a valid UUID",
		"url":        "{field} must be a valid URL",
		"http_url":   "{field} must be a valid URL",
		"hhmm":       "{field} must be a time in HH:MM format",
		"futuredate": "{field} must be a date (YYYY-MM-DD) in the future",
	}
)

func message(valErr val.FieldError) string {
	errStr := messages[valErr.Tag()]
	if errStr == "" {
		return valErr.Error()
	}

	errStr = strings.ReplaceAll(errStr, "{field}", valErr.Field())

	return strings.ReplaceAll(errStr, "{param}", valErr.Param())
}

// fieldErrors turns validator output into one entry per rejected field.
func fieldErrors(err error) error {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return failure.BadRequest(err) //nolint:wrapcheck
	}

	fields := make([]failure.FieldError, 0, len(valErrors))

	for _, valErr := range valErrors {
		fields = append(fields, failure.FieldError{
			Field:   fieldPath(valErr),
			Message: message(valErr),
		})
	}

	return failure.Validation(fields) //nolint:wrapcheck
}

// fieldPath drops the struct name from the namespace, so "CreateBookingRequest.start_time" becomes "start_time".
func fieldPath(valErr val.FieldError) string {
	namespace := valErr.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}

	if namespace == "" {
		return valErr.Field()
	}

	return namespace
}
