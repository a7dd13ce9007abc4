package validator_test

import (
	"localguide/shared/failure"
	"localguide/shared/timezone"
	"localguide/shared/validator"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"omitempty,oneof=TOURIST GUIDE"`
}

type schedulePayload struct {
	BookingDate string `json:"booking_date" validate:"required,futuredate"`
	StartTime   string `json:"start_time"   validate:"required,hhmm"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		data        registerPayload
		expectError bool
	}{
		{name: "valid struct", data: registerPayload{Email: "ana@example.com", Password: "secret123", Role: "GUIDE"}},
		{name: "missing email", data: registerPayload{Password: "secret123"}, expectError: true},
		{name: "invalid email", data: registerPayload{Email: "nope", Password: "secret123"}, expectError: true},
		{name: "short password", data: registerPayload{Email: "ana@example.com", Password: "short"}, expectError: true},
		{name: "admin role rejected", data: registerPayload{Email: "ana@example.com", Password: "secret123", Role: "ADMIN"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStruct_FieldErrors(t *testing.T) {
	err := validator.ValidateStruct(&registerPayload{Email: "nope"})
	require.Error(t, err)

	assert.Equal(t, "validation failed", err.Error())

	fields := failure.GetFieldErrors(err)
	require.Len(t, fields, 2)

	assert.Equal(t, "email", fields[0].Field)
	assert.Equal(t, "email must be a valid email address", fields[0].Message)
	assert.Equal(t, "password", fields[1].Field)
	assert.Equal(t, "password is required", fields[1].Message)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		jsonBody    string
		expectError bool
	}{
		{name: "valid JSON", jsonBody: `{"email":"ana@example.com","password":"secret123"}`},
		{name: "invalid field", jsonBody: `{"email":"ana","password":"secret123"}`, expectError: true},
		{name: "malformed JSON", jsonBody: `{"email":}`, expectError: true},
		{name: "empty JSON", jsonBody: `{}`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data registerPayload

			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCustomTags(t *testing.T) {
	tomorrow := timezone.Today().AddDate(0, 0, 1).Format("2006-01-02")
	yesterday := timezone.Today().AddDate(0, 0, -1).Format("2006-01-02")

	tests := []struct {
		name        string
		data        schedulePayload
		expectField string
	}{
		{name: "future date and clock time", data: schedulePayload{BookingDate: tomorrow, StartTime: "09:30"}},
		{name: "past date", data: schedulePayload{BookingDate: yesterday, StartTime: "09:30"}, expectField: "booking_date"},
		{name: "garbage date", data: schedulePayload{BookingDate: "tomorrow", StartTime: "09:30"}, expectField: "booking_date"},
		{name: "clock out of range", data: schedulePayload{BookingDate: tomorrow, StartTime: "25:00"}, expectField: "start_time"},
		{name: "clock without padding", data: schedulePayload{BookingDate: tomorrow, StartTime: "9:30"}, expectField: "start_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.expectField == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)

			fields := failure.GetFieldErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.expectField, fields[0].Field)
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("CONFIRMED", "oneof=CONFIRMED CANCELLED"))
	assert.Error(t, validator.ValidateVar("COMPLETED", "oneof=CONFIRMED CANCELLED"))
}
