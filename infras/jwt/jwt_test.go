package jwt_test

import (
	"localguide/config"
	"localguide/infras/jwt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(expireMin int) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireMin = expireMin
	cfg.App.Name = "localguide"

	return cfg
}

func TestGenerateAndValidate(t *testing.T) {
	svc := jwt.New(newConfig(60))

	token, err := svc.Generate("user-1", "ana@example.com", "GUIDE")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "GUIDE", claims.Role)
}

func TestValidate_Failures(t *testing.T) {
	svc := jwt.New(newConfig(60))

	other := newConfig(60)
	other.JWT.Secret = "another-secret"

	foreign, err := jwt.New(other).Generate("user-1", "ana@example.com", "GUIDE")
	require.NoError(t, err)

	expired, err := jwt.New(newConfig(-5)).Generate("user-1", "ana@example.com", "GUIDE")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "garbage", token: "not-a-token", wantErr: jwt.ErrInvalidToken},
		{name: "wrong secret", token: foreign, wantErr: jwt.ErrInvalidToken},
		{name: "expired", token: expired, wantErr: jwt.ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		cookie   string
		expected string
		wantErr  bool
	}{
		{name: "bearer header", header: "Bearer abc", expected: "abc"},
		{name: "cookie fallback", cookie: "xyz", expected: "xyz"},
		{name: "header wins over cookie", header: "Bearer abc", cookie: "xyz", expected: "abc"},
		{name: "non bearer header", header: "Basic abc", wantErr: true},
		{name: "nothing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}

			token, err := jwt.ExtractToken(req, "token")
			if tt.wantErr {
				assert.ErrorIs(t, err, jwt.ErrMissingToken)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}
