package failure_test

import (
	"errors"
	"fmt"
	"localguide/shared/failure"
	"net/http"
	"testing"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "listing is not active",
	}

	if f.Error() != "listing is not active" {
		t.Errorf("expected error message to be 'listing is not active', got %s", f.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("bad input")), code: http.StatusBadRequest, message: "bad input"},
		{name: "bad request from string", err: failure.BadRequestFromString("cannot book your own listing"), code: http.StatusBadRequest, message: "cannot book your own listing"},
		{name: "unauthorized", err: failure.Unauthorized("invalid credentials"), code: http.StatusUnauthorized, message: "invalid credentials"},
		{name: "forbidden", err: failure.Forbidden("not your booking"), code: http.StatusForbidden, message: "not your booking"},
		{name: "not found", err: failure.NotFound("booking not found"), code: http.StatusNotFound, message: "booking not found"},
		{name: "conflict", err: failure.Conflict("booking already reviewed"), code: http.StatusConflict, message: "booking already reviewed"},
		{name: "internal", err: failure.InternalError(errors.New("boom")), code: http.StatusInternalServerError, message: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.GetCode(tt.err); got != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, got)
			}

			if tt.err.Error() != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.err.Error())
			}
		})
	}
}

func TestNilInputs(t *testing.T) {
	if failure.BadRequest(nil) != nil {
		t.Error("expected BadRequest(nil) to be nil")
	}

	if failure.InternalError(nil) != nil {
		t.Error("expected InternalError(nil) to be nil")
	}
}

func TestValidation(t *testing.T) {
	err := failure.Validation([]failure.FieldError{
		{Field: "email", Message: "email is required"},
		{Field: "password", Message: "password must be at least 8 characters"},
	})

	if failure.GetCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", failure.GetCode(err))
	}

	fields := failure.GetFieldErrors(err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(fields))
	}

	if fields[0].Field != "email" {
		t.Errorf("expected first field to be email, got %s", fields[0].Field)
	}
}

func TestGetCode_WrappedAndPlain(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", failure.Conflict("email already registered"))

	if got := failure.GetCode(wrapped); got != http.StatusConflict {
		t.Errorf("expected wrapped conflict to keep 409, got %d", got)
	}

	if got := failure.GetCode(errors.New("driver exploded")); got != http.StatusInternalServerError {
		t.Errorf("expected plain error to map to 500, got %d", got)
	}

	if !failure.IsCode(wrapped, http.StatusConflict) {
		t.Error("expected IsCode to match wrapped conflict")
	}

	if failure.IsCode(errors.New("x"), http.StatusConflict) {
		t.Error("expected IsCode to reject plain error")
	}
}
