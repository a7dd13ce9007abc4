package shared_test

import (
	"context"
	"testing"
	"time"

	"localguide/shared"
	"localguide/shared/constant"
	"localguide/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		input    string
		expected *bool
	}{
		{input: "", expected: nil},
		{input: "true", expected: boolPtr(true)},
		{input: "0", expected: boolPtr(false)},
		{input: "F", expected: boolPtr(false)},
		{input: "yes", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.ConvertStringToBool(tt.input))
		})
	}
}

func TestConvertStringToFloat(t *testing.T) {
	assert.Nil(t, shared.ConvertStringToFloat(""))
	assert.Nil(t, shared.ConvertStringToFloat("cheap"))

	got := shared.ConvertStringToFloat("49.5")
	require.NotNil(t, got)
	assert.InDelta(t, 49.5, *got, 0.0001)
}

func TestTransformFields(t *testing.T) {
	type listingPatch struct {
		Title       string   `db:"title"`
		City        string   `db:"city"`
		TourFee     *float64 `db:"tour_fee"`
		MaxGroup    *int     `db:"max_group_size"`
		IsActive    *bool    `db:"is_active"`
		Description string
		Internal    string `db:"-"`
	}

	fee := 0.0
	inactive := false

	tests := []struct {
		name     string
		patch    listingPatch
		expected map[string]any
	}{
		{
			name:     "only set fields are written",
			patch:    listingPatch{Title: "Old Town Walk", Description: "untagged", Internal: "skipped"},
			expected: map[string]any{"title": "Old Town Walk"},
		},
		{
			name:     "pointers to zero values are kept",
			patch:    listingPatch{TourFee: &fee, IsActive: &inactive},
			expected: map[string]any{"tour_fee": &fee, "is_active": &inactive},
		},
		{
			name:     "empty patch only stamps the audit columns",
			patch:    listingPatch{},
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.TransformFields(tt.patch, "guide@example.com")

			assert.Equal(t, "guide@example.com", result[constant.FieldModifiedBy])
			assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])

			delete(result, constant.FieldModifiedAt)
			delete(result, constant.FieldModifiedBy)

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFilterByID(t *testing.T) {
	result := shared.FilterByID("550e8400-e29b-41d4-a716-446655440000", "id", "listings")

	require.Len(t, result.Filters, 1)
	assert.Equal(t, dto.Filter{
		Field:    "id",
		Value:    "550e8400-e29b-41d4-a716-446655440000",
		Operator: dto.FilterOperatorEq,
		Table:    "listings",
	}, result.Filters[0])
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount   float64
		expected int64
	}{
		{amount: 0, expected: 0},
		{amount: 50, expected: 5000},
		{amount: 19.99, expected: 1999},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, shared.ToMinorUnits(tt.amount), "amount %v", tt.amount)
	}
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "user:profile:42", shared.BuildCacheKey("user", "profile", "42"))
}

func TestContextIdentity(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, shared.GetUserID(ctx))
	assert.Equal(t, constant.ContextSystem, shared.GetActor(ctx))
	assert.False(t, shared.IsAdmin(ctx))

	ctx = shared.WithIdentity(ctx, "user-1", "guide@example.com", constant.RoleGuide)

	assert.Equal(t, "user-1", shared.GetUserID(ctx))
	assert.Equal(t, "guide@example.com", shared.GetActor(ctx))
	assert.Equal(t, "guide@example.com", shared.GetUserEmail(ctx))
	assert.Equal(t, constant.RoleGuide, shared.GetUserRole(ctx))
	assert.False(t, shared.IsAdmin(ctx))
}

func boolPtr(b bool) *bool {
	return &b
}
