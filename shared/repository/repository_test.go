package repository

import (
	"errors"
	"net/http"
	"testing"

	"localguide/shared/failure"

	"github.com/lib/pq"
	pkgErrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
		wantSame    bool
	}{
		{
			name:        "unique violation",
			err:         &pq.Error{Code: "23505", Constraint: "reviews_booking_id_key"},
			wantCode:    http.StatusConflict,
			wantMessage: "Review already exists",
		},
		{
			name:        "foreign key violation",
			err:         pkgErrors.Wrap(&pq.Error{Code: "23503", Constraint: "bookings_listing_id_fkey"}, "insert booking"),
			wantCode:    http.StatusBadRequest,
			wantMessage: "referenced bookings_listing_id does not exist",
		},
		{name: "other pq errors pass through", err: &pq.Error{Code: "40001"}, wantSame: true},
		{name: "non driver errors pass through", err: plain, wantSame: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError("Review", tt.err)

			if tt.wantSame {
				assert.Equal(t, tt.err, got)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(got))
			assert.Equal(t, tt.wantMessage, got.Error())
		})
	}
}

func TestIsInvalidInput(t *testing.T) {
	assert.True(t, isInvalidInput(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}))
	assert.True(t, isInvalidInput(pkgErrors.Wrap(&pq.Error{Code: "22P02"}, "get listing")))
	assert.False(t, isInvalidInput(&pq.Error{Code: "23505"}))
	assert.False(t, isInvalidInput(errors.New("boom")))
	assert.False(t, isInvalidInput(nil))
}
