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
	listingMocks "localguide/internal/domains/listing/mocks"
	"localguide/internal/domains/listing/model"
	"localguide/internal/domains/listing/model/dto"
	"localguide/internal/domains/listing/service"
	reviewMocks "localguide/internal/domains/review/mocks"
	reviewModel "localguide/internal/domains/review/model"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
)

type fixture struct {
	repo        *listingMocks.MockListing
	bookingRepo *bookingMocks.MockBooking
	reviewRepo  *reviewMocks.MockReview
	svc         service.Listing
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:        listingMocks.NewMockListing(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		reviewRepo:  reviewMocks.NewMockReview(ctrl),
	}

	f.svc = service.New(f.repo, f.bookingRepo, f.reviewRepo, &config.Config{}, mocks.NewOtel())

	return f
}

func guideCtx(id string) context.Context {
	return shared.WithIdentity(context.Background(), id, id+"@example.com", constant.RoleGuide)
}

func TestListingService_Create(t *testing.T) {
	req := dto.CreateListingRequest{
		Title:        "Old town food walk",
		Description:  "Three hours of pastries, markets and tascas.",
		TourFee:      65,
		Duration:     3,
		MeetingPoint: "Praca do Comercio",
		MaxGroupSize: 8,
		City:         "Lisbon",
		Country:      "Portugal",
		Category:     []string{"food"},
	}

	t.Run("guide creates an active listing", func(t *testing.T) {
		f := newFixture(t)

		var inserted model.Listing

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, listing model.Listing) error {
			inserted = listing

			return nil
		})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ gDto.FilterGroup, _ ...string) (model.Listing, error) {
			inserted.GuideName = "Ana"

			return inserted, nil
		})

		res, err := f.svc.Create(guideCtx("guide-1"), req)
		require.NoError(t, err)

		assert.Equal(t, "guide-1", inserted.GuideID)
		assert.True(t, inserted.IsActive)
		assert.Equal(t, []string{}, res.Images)
		assert.Equal(t, "Ana", res.Guide.Name)
		assert.Equal(t, "guide-1@example.com", inserted.CreatedBy)
	})

	t.Run("tourists cannot create listings", func(t *testing.T) {
		f := newFixture(t)

		ctx := shared.WithIdentity(context.Background(), "tourist-1", "t@example.com", constant.RoleTourist)

		_, err := f.svc.Create(ctx, req)
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestListingService_Delete(t *testing.T) {
	listing := model.Listing{ID: "listing-1", GuideID: "guide-1"}

	tests := []struct {
		name       string
		ctx        context.Context
		found      model.Listing
		active     bool
		deleteErr  error
		wantCode   int
		wantDelete bool
	}{
		{name: "no active bookings", ctx: guideCtx("guide-1"), found: listing, wantDelete: true},
		{name: "pending or confirmed bookings block deletion", ctx: guideCtx("guide-1"), found: listing, active: true, wantCode: http.StatusBadRequest},
		{name: "another guide is forbidden", ctx: guideCtx("guide-2"), found: listing, wantCode: http.StatusForbidden},
		{
			name:       "admin may delete",
			ctx:        shared.WithIdentity(context.Background(), "admin-1", "a@example.com", constant.RoleAdmin),
			found:      listing,
			wantDelete: true,
		},
		{name: "missing listing", ctx: guideCtx("guide-1"), found: model.Listing{}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.found, nil)

			if tt.found.ID != "" && tt.wantCode != http.StatusForbidden {
				f.bookingRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
						where, args := filter.GetWhereClause()
						assert.Contains(t, where, "bookings.status IN (:status_0, :status_1)")
						assert.Equal(t, "listing-1", args["listing_id"])

						return tt.active, nil
					})
			}

			if tt.wantDelete {
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			}

			err := f.svc.Delete(tt.ctx, "listing-1")

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestListingService_Update(t *testing.T) {
	title := "Sunset sail on the Tagus"
	listing := model.Listing{ID: "listing-1", GuideID: "guide-1", Title: "Old"}

	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Update(guideCtx("guide-1"), "listing-1", dto.UpdateListingRequest{})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("owner updates", func(t *testing.T) {
		f := newFixture(t)

		updated := listing
		updated.Title = title

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(listing, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, &title, fields[model.FieldTitle])
				assert.NotContains(t, fields, model.FieldTourFee)

				return nil
			})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil)

		res, err := f.svc.Update(guideCtx("guide-1"), "listing-1", dto.UpdateListingRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, res.Title)
	})

	t.Run("non owner", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(listing, nil)

		_, err := f.svc.Update(guideCtx("guide-9"), "listing-1", dto.UpdateListingRequest{Title: &title})
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestListingService_Get(t *testing.T) {
	f := newFixture(t)

	rating := 4.0
	listing := model.Listing{ID: "listing-1", GuideID: "guide-1", AverageRating: &rating}

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(listing, nil)
	f.reviewRepo.EXPECT().Avg(gomock.Any(), "reviews.rating", gomock.Any()).Return(4.5, nil)
	f.reviewRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]reviewModel.Review, error) {
			assert.Equal(t, 10, params.Limit)
			assert.Equal(t, "reviews.created_at", params.SortBy)

			return []reviewModel.Review{{ID: "review-1", Rating: 5, TouristName: "Tom"}}, nil
		})

	res, err := f.svc.Get(context.Background(), "listing-1")
	require.NoError(t, err)

	assert.InDelta(t, 4.0, res.AverageRating, 0.001)
	require.NotNil(t, res.Guide.AverageRating)
	assert.InDelta(t, 4.5, *res.Guide.AverageRating, 0.001)
	require.Len(t, res.Reviews, 1)
	assert.Equal(t, "Tom", res.Reviews[0].TouristName)
}

func TestListingService_GetAll(t *testing.T) {
	f := newFixture(t)

	query := dto.ListListingsQuery{QueryParams: gDto.QueryParams{Page: 1, Limit: 10, SortBy: dto.SortRating}}
	query.ApplySort()

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("db down"))

	_, err := f.svc.GetAll(context.Background(), query)
	require.Error(t, err)
	assert.Equal(t, "COALESCE(rating_stats.average_rating, 0)", query.SortBy)
}
