package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localguide/shared/failure"
	"localguide/transport/http/response"
)

type envelope struct {
	Data    any                  `json:"data"`
	Message string               `json:"message"`
	Error   string               `json:"error"`
	Errors  []failure.FieldError `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		expose    bool
		wantCode  int
		wantError string
		wantField int
	}{
		{name: "failure keeps its message", err: failure.Conflict("You have already reviewed this booking"), wantCode: http.StatusConflict, wantError: "You have already reviewed this booking"},
		{name: "wrapped failure", err: fmt.Errorf("service: %w", failure.NotFound("Booking not found")), wantCode: http.StatusNotFound, wantError: "Booking not found"},
		{name: "plain error hidden", err: errors.New("pq: relation does not exist"), wantCode: http.StatusInternalServerError, wantError: "internal server error"},
		{name: "plain error exposed in development", err: errors.New("pq: relation does not exist"), expose: true, wantCode: http.StatusInternalServerError, wantError: "pq: relation does not exist"},
		{
			name:      "validation carries fields",
			err:       failure.Validation([]failure.FieldError{{Field: "rating", Message: "rating must be at most 5"}}),
			wantCode:  http.StatusBadRequest,
			wantError: "validation failed",
			wantField: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response.ExposeInternalErrors(tt.expose)
			t.Cleanup(func() { response.ExposeInternalErrors(false) })

			rec := httptest.NewRecorder()
			response.WithError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decode(t, rec)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Len(t, body.Errors, tt.wantField)
		})
	}
}

func TestWithJSONMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithJSONMessage(rec, http.StatusCreated, "Booking created successfully", map[string]string{"id": "booking-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Booking created successfully", body.Message)
	assert.Equal(t, map[string]any{"id": "booking-1"}, body.Data)
}

func TestWithNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithNotFound(rec, httptest.NewRequest(http.MethodGet, "/v1/nothing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route /v1/nothing not found", decode(t, rec).Error)
}
