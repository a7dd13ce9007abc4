package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"localguide/config"
	"localguide/infras/otel/mocks"
	bookingMocks "localguide/internal/domains/booking/mocks"
	bookingModel "localguide/internal/domains/booking/model"
	"localguide/internal/domains/dashboard/model/dto"
	"localguide/internal/domains/dashboard/service"
	listingMocks "localguide/internal/domains/listing/mocks"
	paymentMocks "localguide/internal/domains/payment/mocks"
	reviewMocks "localguide/internal/domains/review/mocks"
	reviewModel "localguide/internal/domains/review/model"
	userMocks "localguide/internal/domains/user/mocks"
	userModel "localguide/internal/domains/user/model"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
)

type fixture struct {
	userRepo    *userMocks.MockUser
	profileRepo *userMocks.MockProfile
	listingRepo *listingMocks.MockListing
	bookingRepo *bookingMocks.MockBooking
	paymentRepo *paymentMocks.MockPayment
	reviewRepo  *reviewMocks.MockReview
	svc         service.Dashboard
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		userRepo:    userMocks.NewMockUser(ctrl),
		profileRepo: userMocks.NewMockProfile(ctrl),
		listingRepo: listingMocks.NewMockListing(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		paymentRepo: paymentMocks.NewMockPayment(ctrl),
		reviewRepo:  reviewMocks.NewMockReview(ctrl),
	}

	f.svc = service.New(f.userRepo, f.profileRepo, f.listingRepo, f.bookingRepo, f.paymentRepo, f.reviewRepo, &config.Config{}, mocks.NewOtel())

	return f
}

var (
	touristCtx = shared.WithIdentity(context.Background(), "tourist-1", "tourist@example.com", constant.RoleTourist)
	guideCtx   = shared.WithIdentity(context.Background(), "guide-1", "guide@example.com", constant.RoleGuide)
	adminCtx   = shared.WithIdentity(context.Background(), "admin-1", "admin@example.com", constant.RoleAdmin)
)

func where(filter gDto.FilterGroup) (string, map[string]any) {
	return filter.GetWhereClause()
}

func TestDashboardService_Tourist(t *testing.T) {
	f := newFixture(t)

	f.bookingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			clause, args := where(filter)
			assert.Equal(t, "tourist-1", args["tourist_id"])

			switch {
			case strings.Contains(clause, "bookings.booking_date"):
				return 2, nil
			case args["status"] == bookingModel.StatusCompleted:
				return 3, nil
			default:
				return 6, nil
			}
		})

	f.reviewRepo.EXPECT().Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			clause, _ := where(filter)
			assert.Contains(t, clause, "reviews.tourist_id = :tourist_id")

			return 3, nil
		})

	f.paymentRepo.EXPECT().Sum(gomock.Any(), "payments.amount", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, filter gDto.FilterGroup) (float64, error) {
			clause, args := where(filter)
			assert.Contains(t, clause, "payments.user_id = :user_id")
			assert.Contains(t, clause, "payments.status = :status")
			assert.Equal(t, "tourist-1", args["user_id"])

			return 390, nil
		})

	f.bookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]bookingModel.Booking, error) {
			assert.Equal(t, "bookings.booking_date", params.SortBy)
			assert.Equal(t, 5, params.Limit)

			if params.SortDir == gDto.SortDirAsc {
				return []bookingModel.Booking{{ID: "upcoming-1", Status: bookingModel.StatusConfirmed}}, nil
			}

			return []bookingModel.Booking{{ID: "past-1", Status: bookingModel.StatusCompleted}, {ID: "past-2", Status: bookingModel.StatusCompleted}}, nil
		})

	res, err := f.svc.Tourist(touristCtx)
	require.NoError(t, err)

	assert.Equal(t, dto.TouristStats{
		TotalBookings:     6,
		UpcomingBookings:  2,
		CompletedBookings: 3,
		TotalSpent:        390,
		ReviewsGiven:      3,
	}, res.Stats)
	require.Len(t, res.UpcomingTrips, 1)
	assert.Equal(t, "upcoming-1", res.UpcomingTrips[0].ID)
	assert.Len(t, res.PastTrips, 2)
}

func TestDashboardService_Guide(t *testing.T) {
	f := newFixture(t)

	f.listingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			_, args := where(filter)
			if args["is_active"] == true {
				return 2, nil
			}

			return 3, nil
		})

	f.bookingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Times(4).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			_, args := where(filter)
			assert.Equal(t, "guide-1", args["guide_id"])

			switch args["status"] {
			case bookingModel.StatusPending:
				return 1, nil
			case bookingModel.StatusConfirmed:
				return 2, nil
			case bookingModel.StatusCompleted:
				return 4, nil
			default:
				return 9, nil
			}
		})

	f.reviewRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	f.reviewRepo.EXPECT().Avg(gomock.Any(), "reviews.rating", gomock.Any()).Return(4.3333, nil)

	f.paymentRepo.EXPECT().Sum(gomock.Any(), "payments.amount", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, filter gDto.FilterGroup) (float64, error) {
			clause, args := where(filter)
			assert.Contains(t, clause, "bookings.guide_id = :earning_guide_id")
			assert.Equal(t, "guide-1", args["earning_guide_id"])

			return 520, nil
		})

	f.bookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]bookingModel.Booking, error) {
			clause, _ := where(filter)
			assert.Equal(t, gDto.SortDirAsc, params.SortDir)
			assert.Contains(t, clause, "bookings.guide_id = :guide_id")
			assert.Contains(t, clause, "bookings.booking_date >= :booking_date")

			return []bookingModel.Booking{{ID: "booking-1", Status: bookingModel.StatusPending}}, nil
		})

	f.reviewRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]reviewModel.Review{{ID: "review-1", Rating: 5}}, nil)

	res, err := f.svc.Guide(guideCtx)
	require.NoError(t, err)

	assert.Equal(t, dto.GuideStats{
		TotalListings:     3,
		ActiveListings:    2,
		TotalBookings:     9,
		PendingBookings:   1,
		ConfirmedBookings: 2,
		CompletedBookings: 4,
		TotalEarnings:     520,
		TotalReviews:      3,
		AverageRating:     4.3,
	}, res.Stats)
	assert.Len(t, res.UpcomingBookings, 1)
	require.Len(t, res.RecentReviews, 1)
	assert.Equal(t, "review-1", res.RecentReviews[0].ID)
}

func TestDashboardService_Admin(t *testing.T) {
	f := newFixture(t)

	f.userRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			_, args := where(filter)

			switch args["role"] {
			case constant.RoleGuide:
				return 4, nil
			case constant.RoleTourist:
				return 10, nil
			default:
				return 15, nil
			}
		})

	f.listingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(7, nil)
	f.bookingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			_, args := where(filter)

			switch args["status"] {
			case bookingModel.StatusPending:
				return 5, nil
			case bookingModel.StatusCompleted:
				return 8, nil
			default:
				return 20, nil
			}
		})
	f.paymentRepo.EXPECT().Sum(gomock.Any(), "payments.amount", gomock.Any()).Return(1234.5, nil)
	f.bookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]bookingModel.Booking{{ID: "booking-1"}}, nil)
	f.userRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]userModel.User{{ID: "user-1"}, {ID: "user-2"}}, nil)

	f.profileRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]userModel.Profile, error) {
			_, args := where(filter)
			assert.Equal(t, constant.RoleGuide, args["role"])
			assert.Equal(t, "COALESCE(guide_ratings.review_count, 0)", params.SortBy)
			assert.Equal(t, gDto.SortDirDesc, params.SortDir)

			return []userModel.Profile{{User: userModel.User{ID: "guide-1", Name: "Mara"}}}, nil
		})

	res, err := f.svc.Admin(adminCtx)
	require.NoError(t, err)

	assert.Equal(t, dto.AdminStats{
		TotalUsers:        15,
		TotalGuides:       4,
		TotalTourists:     10,
		TotalListings:     7,
		TotalBookings:     20,
		PendingBookings:   5,
		CompletedBookings: 8,
		TotalRevenue:      1234.5,
	}, res.Stats)
	assert.Len(t, res.RecentBookings, 1)
	assert.Len(t, res.RecentUsers, 2)
	require.Len(t, res.TopGuides, 1)
	assert.Equal(t, "Mara", res.TopGuides[0].Name)
}

func TestDashboardService_QueryFailure(t *testing.T) {
	f := newFixture(t)

	f.bookingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("connection reset")).AnyTimes()
	f.reviewRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
	f.paymentRepo.EXPECT().Sum(gomock.Any(), gomock.Any(), gomock.Any()).Return(float64(0), nil).AnyTimes()
	f.bookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := f.svc.Tourist(touristCtx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}

func TestDashboardService_Get(t *testing.T) {
	t.Run("dispatches on role", func(t *testing.T) {
		f := newFixture(t)

		f.bookingRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
		f.reviewRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
		f.paymentRepo.EXPECT().Sum(gomock.Any(), gomock.Any(), gomock.Any()).Return(float64(0), nil).AnyTimes()
		f.bookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		res, err := f.svc.Get(touristCtx)
		require.NoError(t, err)
		assert.IsType(t, dto.TouristDashboard{}, res)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Get(shared.WithIdentity(context.Background(), "x", "x@example.com", "SUPPORT"))
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}
