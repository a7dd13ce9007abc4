package dto_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"localguide/internal/domains/review/model/dto"
)

func TestListReviewsQuery(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantWhere string
		wantArgs  map[string]any
	}{
		{name: "no filters", url: "/reviews", wantWhere: "", wantArgs: map[string]any{}},
		{
			name:      "guide and rating",
			url:       "/reviews?guide_id=g-1&rating=4",
			wantWhere: "(reviews.guide_id = :guide_id AND reviews.rating = :rating)",
			wantArgs:  map[string]any{"guide_id": "g-1", "rating": 4},
		},
		{
			name:      "out of range rating ignored",
			url:       "/reviews?listing_id=l-1&rating=9",
			wantWhere: "(reviews.listing_id = :listing_id)",
			wantArgs:  map[string]any{"listing_id": "l-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query dto.ListReviewsQuery

			query.FromRequest(httptest.NewRequest("GET", tt.url, nil))

			filter := query.Filter()
			where, args := filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, "reviews.created_at", query.SortBy)
			assert.Equal(t, "DESC", query.SortDir)
		})
	}
}

func TestCreateReviewRequest_ToModel(t *testing.T) {
	req := dto.CreateReviewRequest{BookingID: "b-1", Rating: 3, Comment: "  decent tour overall  "}

	review := req.ToModel("t-1", "g-1", "l-1", "t@example.com")

	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "decent tour overall", review.Comment)
	assert.Equal(t, "g-1", review.GuideID)
	assert.Equal(t, "t@example.com", review.CreatedBy)
}
