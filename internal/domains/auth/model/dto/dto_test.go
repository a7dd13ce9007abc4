package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"localguide/internal/domains/auth/model/dto"
	"localguide/shared/constant"
)

func TestRegisterRequest_ToUserModel(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.RegisterRequest
		wantRole string
	}{
		{
			name:     "defaults to tourist",
			req:      dto.RegisterRequest{Email: " Ana@Example.COM ", Password: "secret1", Name: " Ana "},
			wantRole: constant.RoleTourist,
		},
		{
			name:     "guide keeps role",
			req:      dto.RegisterRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana", Role: constant.RoleGuide, Languages: []string{"en", "pt"}},
			wantRole: constant.RoleGuide,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.req.ToUserModel("hashed")

			assert.NotEmpty(t, user.ID)
			assert.Equal(t, "ana@example.com", user.Email)
			assert.Equal(t, "Ana", user.Name)
			assert.Equal(t, "hashed", user.Password)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.True(t, user.IsActive)
			assert.NotNil(t, user.Languages)
		})
	}
}

func TestLoginRequest_NormalizedEmail(t *testing.T) {
	req := dto.LoginRequest{Email: "  MIXED@Case.io"}

	assert.Equal(t, "mixed@case.io", req.NormalizedEmail())
}
