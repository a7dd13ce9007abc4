package booking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"localguide/config"
	"localguide/infras/jwt"
	jwtMocks "localguide/infras/jwt/mocks"
	"localguide/infras/otel/mocks"
	"localguide/internal/domains/booking/model/dto"
	serviceMocks "localguide/internal/domains/booking/service/mocks"
	userMocks "localguide/internal/domains/user/mocks"
	userModel "localguide/internal/domains/user/model"
	"localguide/internal/handlers/booking"
	"localguide/shared"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"localguide/shared/timezone"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const listingID = "6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"

type fixture struct {
	service  *serviceMocks.MockBooking
	jwt      *jwtMocks.MockJWT
	userRepo *userMocks.MockUser
	router   chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.JWT.CookieName = "token"

	f := &fixture{
		service:  serviceMocks.NewMockBooking(ctrl),
		jwt:      jwtMocks.NewMockJWT(ctrl),
		userRepo: userMocks.NewMockUser(ctrl),
	}

	handler := booking.New(f.service, middleware.NewAuthRoleMiddleware(f.jwt, f.userRepo, mocks.NewOtel(), cfg), mocks.NewOtel())

	f.router = chi.NewRouter()
	f.router.Route("/v1", handler.Router)

	return f
}

// as signs the request in as a user with the given role.
func (f *fixture) as(req *http.Request, role string) *http.Request {
	user := userModel.User{ID: "user-1", Email: "someone@example.com", Role: role, IsActive: true}

	f.jwt.EXPECT().Validate("token-" + role).Return(&jwt.Claims{UserID: user.ID, Email: user.Email, Role: role}, nil)
	f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer token-"+role)

	return req
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func createBody(date string) string {
	return `{"listing_id":"` + listingID + `","booking_date":"` + date + `","start_time":"09:00","number_of_people":2}`
}

func tomorrow() string {
	return timezone.Today().AddDate(0, 0, 1).Format(constant.DateOnlyFormat)
}

func TestCreateBooking(t *testing.T) {
	t.Run("rejects anonymous callers before any work", func(t *testing.T) {
		f := newFixture(t)

		rec := f.serve(httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(createBody(tomorrow()))))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("guides cannot book", func(t *testing.T) {
		f := newFixture(t)

		req := f.as(httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(createBody(tomorrow()))), constant.RoleGuide)
		rec := f.serve(req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("past date fails validation", func(t *testing.T) {
		f := newFixture(t)

		yesterday := timezone.Today().AddDate(0, 0, -1).Format(constant.DateOnlyFormat)
		req := f.as(httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(createBody(yesterday))), constant.RoleTourist)
		rec := f.serve(req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body response.Error
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "booking_date", body.Errors[0].Field)
	})

	t.Run("tourist books a tour", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error) {
			assert.Equal(t, "user-1", shared.GetUserID(ctx))
			assert.Equal(t, listingID, req.ListingID)
			assert.Equal(t, 2, req.NumberOfPeople)

			return dto.BookingResponse{ID: "booking-1", Status: "PENDING"}, nil
		})

		req := f.as(httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(createBody(tomorrow()))), constant.RoleTourist)
		rec := f.serve(req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var body response.DataWithMessage[dto.BookingResponse]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Booking created successfully", *body.Message)
		assert.Equal(t, "booking-1", body.Data.ID)
	})
}

func TestBookingStatusRoutes(t *testing.T) {
	t.Run("status change reaches the service with the path id", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().
			UpdateStatus(gomock.Any(), "booking-1", dto.UpdateBookingStatusRequest{Status: "CONFIRMED"}).
			Return(dto.BookingResponse{ID: "booking-1", Status: "CONFIRMED"}, nil)

		req := f.as(httptest.NewRequest(http.MethodPatch, "/v1/bookings/booking-1/status", strings.NewReader(`{"status":"CONFIRMED"}`)), constant.RoleGuide)
		rec := f.serve(req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("completed is not a client status", func(t *testing.T) {
		f := newFixture(t)

		req := f.as(httptest.NewRequest(http.MethodPatch, "/v1/bookings/booking-1/status", strings.NewReader(`{"status":"COMPLETED"}`)), constant.RoleGuide)
		rec := f.serve(req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("tourists cannot complete", func(t *testing.T) {
		f := newFixture(t)

		req := f.as(httptest.NewRequest(http.MethodPatch, "/v1/bookings/booking-1/complete", nil), constant.RoleTourist)
		rec := f.serve(req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("service conflicts are surfaced", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Complete(gomock.Any(), "booking-1").Return(dto.BookingResponse{}, failure.Conflict("Only confirmed bookings can be completed"))

		req := f.as(httptest.NewRequest(http.MethodPatch, "/v1/bookings/booking-1/complete", nil), constant.RoleGuide)
		rec := f.serve(req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetBookingByID(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().Get(gomock.Any(), "missing").Return(dto.BookingResponse{}, failure.NotFound("Booking not found"))

	rec := f.serve(f.as(httptest.NewRequest(http.MethodGet, "/v1/bookings/missing", nil), constant.RoleTourist))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
