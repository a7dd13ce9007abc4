package dto_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localguide/internal/domains/user/model/dto"
	"localguide/shared/constant"
)

func TestListGuidesQuery_Filter(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/users/guides?city=lis&language=Portuguese&min_rate=50&search=food", nil)

	var query dto.ListGuidesQuery
	query.FromRequest(req)

	filter := query.Filter()
	where, args := filter.GetWhereClause()

	assert.Contains(t, where, "users.role = :role")
	assert.Contains(t, where, "users.is_active = :is_active")
	assert.Contains(t, where, "LOWER(users.city) LIKE LOWER(:city)")
	assert.Contains(t, where, "ANY(SELECT LOWER(unnest(users.languages)))")
	assert.Contains(t, where, "users.daily_rate >= :min_rate")
	assert.Contains(t, where, " OR ")
	assert.NotContains(t, where, "max_rate")

	assert.Equal(t, constant.RoleGuide, args["role"])
	assert.Equal(t, true, args["is_active"])
	assert.InDelta(t, 50.0, args["min_rate"], 0.001)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, "users.created_at", query.SortBy)
}

func TestListUsersQuery_Filter(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/users?role=guide&is_active=false", nil)

	var query dto.ListUsersQuery
	query.FromRequest(req)

	filter := query.Filter()
	where, args := filter.GetWhereClause()

	assert.Equal(t, constant.RoleGuide, args["role"])
	assert.Equal(t, false, args["is_active"])
	assert.False(t, strings.Contains(where, "search"))
}

func TestUpdateUserRequest_ToCommand(t *testing.T) {
	rate := 80.0
	city := "Porto"
	prefs := []string{"hiking"}

	req := dto.UpdateUserRequest{DailyRate: &rate, City: &city, TravelPreferences: &prefs}

	guide := req.ToCommand(constant.RoleGuide)
	require.IsType(t, dto.GuideProfileUpdate{}, guide)
	assert.Contains(t, guide.Fields("guide@example.com"), "daily_rate")
	assert.NotContains(t, guide.Fields("guide@example.com"), "travel_preferences")

	tourist := req.ToCommand(constant.RoleTourist)
	assert.Equal(t, constant.RoleTourist, tourist.Role())
	assert.Contains(t, tourist.Fields("t@example.com"), "travel_preferences")
	assert.NotContains(t, tourist.Fields("t@example.com"), "city")

	admin := req.ToCommand(constant.RoleAdmin)
	fields := admin.Fields("admin@example.com")
	assert.NotContains(t, fields, "daily_rate")
	assert.NotContains(t, fields, "travel_preferences")
	assert.Equal(t, "admin@example.com", fields[constant.FieldModifiedBy])
}
