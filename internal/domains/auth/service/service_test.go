package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"localguide/config"
	jwtMocks "localguide/infras/jwt/mocks"
	"localguide/infras/otel/mocks"
	"localguide/internal/domains/auth/model/dto"
	"localguide/internal/domains/auth/service"
	bookingMocks "localguide/internal/domains/booking/mocks"
	listingMocks "localguide/internal/domains/listing/mocks"
	reviewMocks "localguide/internal/domains/review/mocks"
	userMocks "localguide/internal/domains/user/mocks"
	userModel "localguide/internal/domains/user/model"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
	"localguide/shared/password"
)

type fixture struct {
	userRepo    *userMocks.MockUser
	listingRepo *listingMocks.MockListing
	bookingRepo *bookingMocks.MockBooking
	reviewRepo  *reviewMocks.MockReview
	jwt         *jwtMocks.MockJWT
	svc         service.Auth
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		userRepo:    userMocks.NewMockUser(ctrl),
		listingRepo: listingMocks.NewMockListing(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		reviewRepo:  reviewMocks.NewMockReview(ctrl),
		jwt:         jwtMocks.NewMockJWT(ctrl),
	}

	f.svc = service.New(f.userRepo, f.listingRepo, f.bookingRepo, f.reviewRepo, &config.Config{}, mocks.NewOtel(), f.jwt)

	return f
}

func hashed(t *testing.T, plain string) string {
	t.Helper()

	hash, err := password.Hash(plain)
	require.NoError(t, err)

	return hash
}

func TestAuthService_Register(t *testing.T) {
	req := dto.RegisterRequest{Email: "Ana@Example.com", Password: "secret1", Name: "Ana", Role: constant.RoleGuide}

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
				_, args := filter.GetWhereClause()
				assert.Equal(t, "ana@example.com", args[userModel.FieldEmail])

				return true, nil
			})
		f.userRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.Equal(t, "User with this email already exists", err.Error())
	})

	t.Run("concurrent duplicate is a conflict", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.userRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.Conflict("user already exists"))

		_, err := f.svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("stores a bcrypt hash and issues a token", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.userRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user userModel.User) error {
			assert.Equal(t, "ana@example.com", user.Email)
			assert.NotEqual(t, "secret1", user.Password)
			assert.NoError(t, password.Verify("secret1", user.Password))

			return nil
		})
		f.jwt.EXPECT().Generate(gomock.Any(), "ana@example.com", constant.RoleGuide).Return("signed", nil)

		res, err := f.svc.Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "signed", res.Token)
		assert.Equal(t, constant.RoleGuide, res.User.Role)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash := hashed(t, "secret1")

	active := userModel.User{ID: "user-1", Email: "ana@example.com", Password: hash, Role: constant.RoleTourist, IsActive: true}
	inactive := active
	inactive.IsActive = false

	tests := []struct {
		name      string
		user      userModel.User
		password  string
		wantToken bool
	}{
		{name: "valid credentials", user: active, password: "secret1", wantToken: true},
		{name: "unknown email", user: userModel.User{}, password: "secret1"},
		{name: "wrong password", user: active, password: "secret2"},
		{name: "deactivated account", user: inactive, password: "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.user, nil)

			if tt.wantToken {
				f.jwt.EXPECT().Generate("user-1", "ana@example.com", constant.RoleTourist).Return("signed", nil)
			}

			res, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "ANA@example.com", Password: tt.password})

			if tt.wantToken {
				require.NoError(t, err)
				assert.Equal(t, "signed", res.Token)
				assert.Equal(t, "user-1", res.User.ID)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
			assert.Equal(t, "Invalid email or password", err.Error())
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	hash := hashed(t, "secret1")
	ctx := shared.WithIdentity(context.Background(), "user-1", "ana@example.com", constant.RoleTourist)

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "user-1", Password: hash}, nil)
		f.userRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := f.svc.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
		assert.Equal(t, "Current password is incorrect", err.Error())
	})

	t.Run("rehashes new password", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "user-1", Password: hash}, nil)
		f.userRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				stored, ok := fields[userModel.FieldPassword].(string)
				require.True(t, ok)
				assert.NoError(t, password.Verify("secret2", stored))
				assert.Equal(t, "ana@example.com", fields[constant.FieldModifiedBy])

				return nil
			})

		err := f.svc.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"})
		assert.NoError(t, err)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := shared.WithIdentity(context.Background(), "guide-1", "g@example.com", constant.RoleGuide)

	t.Run("counts", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "guide-1", Password: "hash", Role: constant.RoleGuide}, nil)
		f.listingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
		f.bookingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				where, _ := filter.GetWhereClause()
				if where == "(bookings.guide_id = :guide_id)" {
					return 7, nil
				}

				return 1, nil
			}).Times(2)
		f.reviewRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(4, nil)

		res, err := f.svc.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, dto.Counts{Listings: 3, BookingsAsTourist: 1, BookingsAsGuide: 7, ReviewsReceived: 4}, res.Counts)
		assert.Equal(t, "guide-1", res.ID)
	})

	t.Run("count failure", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "guide-1"}, nil)
		f.listingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("db down"))

		_, err := f.svc.Me(ctx)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
