package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"localguide/shared/timezone"
	"reflect"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

func registerClockValidation(field val.FieldLevel) bool {
	value := field.Field().String()
	if len(value) != len(constant.ClockFormat) {
		return false
	}

	_, err := time.Parse(constant.ClockFormat, value)

	return err == nil
}

func registerFutureDateValidation(field val.FieldLevel) bool {
	date, err := timezone.ParseDate(field.Field().String())
	if err != nil {
		return false
	}

	return date.After(timezone.Today())
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	custom := map[string]val.Func{
		"hhmm":       registerClockValidation,
		"futuredate": registerFutureDateValidation,
	}

	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return fieldErrors(err)
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return fieldErrors(err)
	}

	return nil
}
