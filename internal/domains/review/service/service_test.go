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
	"localguide/infras/otel/mocks"
	bookingMocks "localguide/internal/domains/booking/mocks"
	bookingModel "localguide/internal/domains/booking/model"
	bookingDto "localguide/internal/domains/booking/model/dto"
	bookingService "localguide/internal/domains/booking/service"
	listingMocks "localguide/internal/domains/listing/mocks"
	listingModel "localguide/internal/domains/listing/model"
	reviewMocks "localguide/internal/domains/review/mocks"
	"localguide/internal/domains/review/model"
	"localguide/internal/domains/review/model/dto"
	"localguide/internal/domains/review/service"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
	"localguide/shared/timezone"
)

type fixture struct {
	repo        *reviewMocks.MockReview
	bookingRepo *bookingMocks.MockBooking
	svc         service.Review
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:        reviewMocks.NewMockReview(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
	}

	f.svc = service.New(f.repo, f.bookingRepo, &config.Config{}, mocks.NewOtel())

	return f
}

var (
	touristCtx = shared.WithIdentity(context.Background(), "tourist-1", "tourist@example.com", constant.RoleTourist)
	adminCtx   = shared.WithIdentity(context.Background(), "admin-1", "admin@example.com", constant.RoleAdmin)
)

func reviewRequest() dto.CreateReviewRequest {
	return dto.CreateReviewRequest{BookingID: "booking-1", Rating: 5, Comment: "Wonderful walk through the old town"}
}

func TestReviewService_Create(t *testing.T) {
	reviewID := "review-1"

	tests := []struct {
		name     string
		booking  bookingModel.Booking
		wantCode int
		wantMsg  string
	}{
		{
			name:     "booking not found",
			booking:  bookingModel.Booking{},
			wantCode: http.StatusNotFound,
			wantMsg:  "Booking not found",
		},
		{
			name:     "someone else's booking",
			booking:  bookingModel.Booking{ID: "booking-1", TouristID: "tourist-2", Status: bookingModel.StatusCompleted},
			wantCode: http.StatusForbidden,
			wantMsg:  "You can only review your own bookings",
		},
		{
			name:     "booking not completed",
			booking:  bookingModel.Booking{ID: "booking-1", TouristID: "tourist-1", Status: bookingModel.StatusConfirmed},
			wantCode: http.StatusBadRequest,
			wantMsg:  "You can only review completed tours",
		},
		{
			name:     "already reviewed",
			booking:  bookingModel.Booking{ID: "booking-1", TouristID: "tourist-1", Status: bookingModel.StatusCompleted, ReviewID: &reviewID},
			wantCode: http.StatusConflict,
			wantMsg:  "You have already reviewed this booking",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.booking, nil)
			f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

			_, err := f.svc.Create(touristCtx, reviewRequest())
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}

	t.Run("copies guide and listing from the booking", func(t *testing.T) {
		f := newFixture(t)

		f.bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{
			ID: "booking-1", TouristID: "tourist-1", GuideID: "guide-1", ListingID: "listing-1", Status: bookingModel.StatusCompleted,
		}, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, review model.Review) error {
			assert.Equal(t, "guide-1", review.GuideID)
			assert.Equal(t, "listing-1", review.ListingID)
			assert.Equal(t, "tourist-1", review.TouristID)
			assert.Equal(t, 5, review.Rating)

			return nil
		})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Review{ID: "review-1", Rating: 5}, nil)

		res, err := f.svc.Create(touristCtx, reviewRequest())
		require.NoError(t, err)
		assert.Equal(t, "review-1", res.ID)
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		f := newFixture(t)

		f.bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{
			ID: "booking-1", TouristID: "tourist-1", Status: bookingModel.StatusCompleted,
		}, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.Conflict("review already exists"))

		_, err := f.svc.Create(touristCtx, reviewRequest())
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.Equal(t, "You have already reviewed this booking", err.Error())
	})
}

func TestReviewService_Update(t *testing.T) {
	rating := 4
	existing := model.Review{ID: "review-1", TouristID: "tourist-1", Rating: 5}

	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Update(touristCtx, "review-1", dto.UpdateReviewRequest{})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("only the author", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Update(adminCtx, "review-1", dto.UpdateReviewRequest{Rating: &rating})
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("author updates rating", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, &rating, fields[model.FieldRating])
				assert.NotContains(t, fields, model.FieldComment)

				return nil
			})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Review{ID: "review-1", TouristID: "tourist-1", Rating: 4}, nil)

		res, err := f.svc.Update(touristCtx, "review-1", dto.UpdateReviewRequest{Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 4, res.Rating)
	})
}

func TestReviewService_Delete(t *testing.T) {
	existing := model.Review{ID: "review-1", TouristID: "tourist-1"}

	tests := []struct {
		name     string
		ctx      context.Context
		wantCode int
	}{
		{name: "author", ctx: touristCtx},
		{name: "admin", ctx: adminCtx},
		{
			name:     "other tourist",
			ctx:      shared.WithIdentity(context.Background(), "tourist-2", "t2@example.com", constant.RoleTourist),
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)

			if tt.wantCode == 0 {
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			}

			err := f.svc.Delete(tt.ctx, "review-1")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestReviewService_Lists(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 10}

	t.Run("mine is scoped to the caller", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				where, args := filter.GetWhereClause()
				assert.Equal(t, "(reviews.tourist_id = :tourist_id)", where)
				assert.Equal(t, "tourist-1", args[model.FieldTouristID])

				return 0, nil
			})
		f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.Review{}, nil)

		res, err := f.svc.GetMine(touristCtx, dto.ListReviewsQuery{QueryParams: params, GuideID: "ignored"})
		require.NoError(t, err)
		assert.Empty(t, res.Reviews)
	})

	t.Run("guide reviews", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				_, args := filter.GetWhereClause()
				assert.Equal(t, "guide-1", args[model.FieldGuideID])

				return 2, nil
			})
		f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.Review{{ID: "a"}, {ID: "b"}}, nil)

		res, err := f.svc.GetByGuide(context.Background(), "guide-1", dto.ListReviewsQuery{QueryParams: params})
		require.NoError(t, err)
		assert.Len(t, res.Reviews, 2)
		assert.Equal(t, 2, res.Pagination.Total)
	})

	t.Run("count failure", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("db down"))

		_, err := f.svc.GetAll(context.Background(), dto.ListReviewsQuery{QueryParams: params})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

// TestBookAndReviewScenario walks a booking from creation to a review, then retries the review.
func TestBookAndReviewScenario(t *testing.T) {
	ctrl := gomock.NewController(t)

	bookingStore := bookingMocks.NewMockBooking(ctrl)
	listingStore := listingMocks.NewMockListing(ctrl)
	reviewStore := reviewMocks.NewMockReview(ctrl)

	bookings := bookingService.New(bookingStore, listingStore, &config.Config{}, mocks.NewOtel())
	reviews := service.New(reviewStore, bookingStore, &config.Config{}, mocks.NewOtel())

	guideCtx := shared.WithIdentity(context.Background(), "guide-1", "guide@example.com", constant.RoleGuide)

	var stored bookingModel.Booking

	listingStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(listingModel.Listing{
		ID: "listing-1", GuideID: "guide-1", TourFee: 65, Duration: 2, MaxGroupSize: 6, IsActive: true,
	}, nil)
	bookingStore.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, booking bookingModel.Booking) error {
		stored = booking

		return nil
	})
	bookingStore.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, gDto.FilterGroup, ...string) (bookingModel.Booking, error) {
		return stored, nil
	}).AnyTimes()
	bookingStore.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
			status, ok := fields[bookingModel.FieldStatus].(bookingModel.Status)
			require.True(t, ok)

			stored.Status = status

			return 1, nil
		}).Times(2)

	created, err := bookings.Create(touristCtx, bookingDto.CreateBookingRequest{
		ListingID:      "listing-1",
		BookingDate:    timezone.Today().AddDate(0, 0, 3).Format(constant.DateOnlyFormat),
		StartTime:      "10:00",
		NumberOfPeople: 2,
	})
	require.NoError(t, err)
	assert.InDelta(t, 130.0, created.TotalAmount, 0.0001)

	_, err = bookings.Confirm(guideCtx, created.ID)
	require.NoError(t, err)

	completed, err := bookings.Complete(guideCtx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", completed.Status)

	req := dto.CreateReviewRequest{BookingID: created.ID, Rating: 5, Comment: "Ten chars or more"}

	reviewStore.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, review model.Review) error {
		stored.ReviewID = &review.ID

		return nil
	})
	reviewStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Review{ID: "review-1", Rating: 5}, nil)

	review, err := reviews.Create(touristCtx, req)
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	_, err = reviews.Create(touristCtx, req)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}
