package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"localguide/config"
	"localguide/infras/jwt"
	jwtMocks "localguide/infras/jwt/mocks"
	"localguide/infras/otel/mocks"
	userMocks "localguide/internal/domains/user/mocks"
	userModel "localguide/internal/domains/user/model"
	"localguide/shared"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authFixture struct {
	jwt        *jwtMocks.MockJWT
	userRepo   *userMocks.MockUser
	middleware middleware.AuthRole
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.JWT.CookieName = "token"

	f := &authFixture{
		jwt:      jwtMocks.NewMockJWT(ctrl),
		userRepo: userMocks.NewMockUser(ctrl),
	}
	f.middleware = middleware.NewAuthRoleMiddleware(f.jwt, f.userRepo, mocks.NewOtel(), cfg)

	return f
}

func (f *authFixture) signedIn(user userModel.User) {
	f.jwt.EXPECT().Validate("good-token").Return(&jwt.Claims{UserID: user.ID, Email: user.Email, Role: user.Role}, nil)
	f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
}

func bearer(r *http.Request, token string) *http.Request {
	r.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+token)

	return r
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body response.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)

	return *body.Error
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true

		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	active := userModel.User{ID: "user-1", Email: "ana@example.com", Role: constant.RoleTourist, IsActive: true, Password: "hash"}

	tests := []struct {
		name        string
		token       string
		setup       func(f *authFixture)
		wantCode    int
		wantMessage string
	}{
		{
			name:        "missing token",
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Please log in to access this resource",
		},
		{
			name:  "invalid token",
			token: "bad-token",
			setup: func(f *authFixture) {
				f.jwt.EXPECT().Validate("bad-token").Return(nil, jwt.ErrInvalidToken)
			},
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Invalid token",
		},
		{
			name:  "expired token",
			token: "old-token",
			setup: func(f *authFixture) {
				f.jwt.EXPECT().Validate("old-token").Return(nil, jwt.ErrExpiredToken)
			},
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Token has expired",
		},
		{
			name:  "deleted user",
			token: "good-token",
			setup: func(f *authFixture) {
				f.signedIn(userModel.User{})
			},
			wantCode:    http.StatusUnauthorized,
			wantMessage: "User no longer exists",
		},
		{
			name:  "deactivated user",
			token: "good-token",
			setup: func(f *authFixture) {
				inactive := active
				inactive.IsActive = false
				f.signedIn(inactive)
			},
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Your account has been deactivated",
		},
		{
			name:  "lookup failure",
			token: "good-token",
			setup: func(f *authFixture) {
				f.jwt.EXPECT().Validate("good-token").Return(&jwt.Claims{UserID: "user-1"}, nil)
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("connection refused"))
			},
			wantCode:    http.StatusInternalServerError,
			wantMessage: constant.ResponseErrorInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
			if tt.token != "" {
				req = bearer(req, tt.token)
			}

			called := false
			rec := httptest.NewRecorder()
			f.middleware.Authenticate(okHandler(&called)).ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMessage, errorMessage(t, rec))
		})
	}

	t.Run("attaches the caller", func(t *testing.T) {
		f := newAuthFixture(t)
		f.signedIn(active)

		var (
			gotID, gotRole string
			gotUser        userModel.User
		)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = shared.GetUserID(r.Context())
			gotRole = shared.GetUserRole(r.Context())
			gotUser, _ = middleware.UserFromContext(r.Context())

			w.WriteHeader(http.StatusNoContent)
		})

		rec := httptest.NewRecorder()
		f.middleware.Authenticate(next).ServeHTTP(rec, bearer(httptest.NewRequest(http.MethodGet, "/", nil), "good-token"))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-1", gotID)
		assert.Equal(t, constant.RoleTourist, gotRole)
		assert.Empty(t, gotUser.Password)
	})

	t.Run("reads the session cookie", func(t *testing.T) {
		f := newAuthFixture(t)
		f.signedIn(active)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "good-token"})

		called := false
		rec := httptest.NewRecorder()
		f.middleware.Authenticate(okHandler(&called)).ServeHTTP(rec, req)

		assert.True(t, called)
	})
}

func TestOptionalAuth(t *testing.T) {
	f := newAuthFixture(t)
	f.jwt.EXPECT().Validate("bad-token").Return(nil, jwt.ErrInvalidToken)

	var gotID string

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = shared.GetUserID(r.Context())

		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	f.middleware.OptionalAuth(next).ServeHTTP(rec, bearer(httptest.NewRequest(http.MethodGet, "/", nil), "bad-token"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, gotID)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		userID   string
		allowed  []string
		wantCode int
	}{
		{name: "allowed role", userID: "user-1", role: constant.RoleGuide, allowed: []string{constant.RoleGuide, constant.RoleAdmin}, wantCode: http.StatusNoContent},
		{name: "wrong role", userID: "user-1", role: constant.RoleTourist, allowed: []string{constant.RoleGuide}, wantCode: http.StatusForbidden},
		{name: "anonymous", allowed: []string{constant.RoleTourist}, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.userID != "" {
				req = req.WithContext(shared.WithIdentity(req.Context(), tt.userID, "someone@example.com", tt.role))
			}

			called := false
			rec := httptest.NewRecorder()
			f.middleware.Authorize(tt.allowed...)(okHandler(&called)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCode == http.StatusNoContent, called)
		})
	}
}

func TestOwnerOrAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		owner    string
		ownerErr error
		wantCode int
	}{
		{name: "owner", role: constant.RoleGuide, owner: "user-1", wantCode: http.StatusNoContent},
		{name: "someone else", role: constant.RoleGuide, owner: "user-2", wantCode: http.StatusForbidden},
		{name: "admin skips the lookup", role: constant.RoleAdmin, wantCode: http.StatusNoContent},
		{name: "missing resource", role: constant.RoleGuide, ownerErr: failure.NotFound("listing"), wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			resolved := false
			resolver := func(_ *http.Request) (string, error) {
				resolved = true

				return tt.owner, tt.ownerErr
			}

			req := httptest.NewRequest(http.MethodPatch, "/", nil)
			req = req.WithContext(shared.WithIdentity(req.Context(), "user-1", "ana@example.com", tt.role))

			called := false
			rec := httptest.NewRecorder()
			f.middleware.OwnerOrAdmin(resolver)(okHandler(&called)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.role != constant.RoleAdmin, resolved)
		})
	}
}
