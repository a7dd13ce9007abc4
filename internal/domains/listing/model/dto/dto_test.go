package dto_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"localguide/internal/domains/listing/model/dto"
)

func TestListListingsQuery_FromRequest(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		sortBy  string
		sortDir string
	}{
		{name: "default newest", url: "/v1/listings", sortBy: "listings.created_at", sortDir: "DESC"},
		{name: "price ascending", url: "/v1/listings?sort_by=price", sortBy: "listings.tour_fee", sortDir: "ASC"},
		{name: "rating", url: "/v1/listings?sort_by=rating", sortBy: "COALESCE(rating_stats.average_rating, 0)", sortDir: "DESC"},
		{name: "unknown key", url: "/v1/listings?sort_by=guide_id;--", sortBy: "listings.created_at", sortDir: "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query dto.ListListingsQuery
			query.FromRequest(httptest.NewRequest("GET", tt.url, nil))

			assert.Equal(t, tt.sortBy, query.SortBy)
			assert.Equal(t, tt.sortDir, query.SortDir)
			assert.Equal(t, 10, query.Limit)
		})
	}
}

func TestListListingsQuery_Filter(t *testing.T) {
	var query dto.ListListingsQuery
	query.FromRequest(httptest.NewRequest("GET", "/v1/listings?category=food&min_price=20&max_price=80&duration=4&search=wine", nil))

	filter := query.Filter()
	where, args := filter.GetWhereClause()

	assert.Contains(t, where, "listings.is_active = :is_active")
	assert.Contains(t, where, "ANY(SELECT LOWER(unnest(listings.category)))")
	assert.Contains(t, where, "listings.tour_fee >= :min_price")
	assert.Contains(t, where, "listings.tour_fee <= :max_price")
	assert.Contains(t, where, "listings.duration <= :duration")
	assert.Contains(t, where, "LOWER(listings.description) LIKE LOWER(:search_description)")
	assert.Equal(t, 4, args["duration"])
	assert.Equal(t, "%wine%", args["search_title"])
}
