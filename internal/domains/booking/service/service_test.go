package service_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"localguide/config"
	"localguide/infras/otel/mocks"
	bookingMocks "localguide/internal/domains/booking/mocks"
	"localguide/internal/domains/booking/model"
	"localguide/internal/domains/booking/model/dto"
	"localguide/internal/domains/booking/service"
	listingMocks "localguide/internal/domains/listing/mocks"
	listingModel "localguide/internal/domains/listing/model"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
	"localguide/shared/timezone"
)

type fixture struct {
	repo        *bookingMocks.MockBooking
	listingRepo *listingMocks.MockListing
	svc         service.Booking
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:        bookingMocks.NewMockBooking(ctrl),
		listingRepo: listingMocks.NewMockListing(ctrl),
	}

	f.svc = service.New(f.repo, f.listingRepo, &config.Config{}, mocks.NewOtel())

	return f
}

var (
	touristCtx = shared.WithIdentity(context.Background(), "tourist-1", "tourist@example.com", constant.RoleTourist)
	guideCtx   = shared.WithIdentity(context.Background(), "guide-1", "guide@example.com", constant.RoleGuide)
	adminCtx   = shared.WithIdentity(context.Background(), "admin-1", "admin@example.com", constant.RoleAdmin)
)

func activeListing() listingModel.Listing {
	return listingModel.Listing{
		ID:           "listing-1",
		GuideID:      "guide-1",
		TourFee:      65,
		Duration:     3,
		MaxGroupSize: 4,
		IsActive:     true,
	}
}

func bookingRequest(people int) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		ListingID:      "listing-1",
		BookingDate:    timezone.Today().AddDate(0, 0, 7).Format(constant.DateOnlyFormat),
		StartTime:      "22:30",
		NumberOfPeople: people,
	}
}

func TestBookingService_Create(t *testing.T) {
	t.Run("total is fee times headcount", func(t *testing.T) {
		f := newFixture(t)

		var inserted model.Booking

		f.listingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeListing(), nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, booking model.Booking) error {
			inserted = booking

			return nil
		})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ gDto.FilterGroup, _ ...string) (model.Booking, error) {
			return inserted, nil
		})

		res, err := f.svc.Create(touristCtx, bookingRequest(2))
		require.NoError(t, err)

		assert.InDelta(t, 130.0, inserted.TotalAmount, 0.0001)
		assert.Equal(t, model.StatusPending, inserted.Status)
		assert.Equal(t, "guide-1", inserted.GuideID)
		assert.Equal(t, "tourist-1", inserted.TouristID)
		assert.Equal(t, "01:30", inserted.EndTime)
		assert.Equal(t, "PENDING", res.Status)
	})

	t.Run("headcount defaults to one", func(t *testing.T) {
		f := newFixture(t)

		f.listingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeListing(), nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, booking model.Booking) error {
			assert.Equal(t, 1, booking.NumberOfPeople)
			assert.InDelta(t, 65.0, booking.TotalAmount, 0.0001)

			return nil
		})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "booking-1"}, nil)

		_, err := f.svc.Create(touristCtx, bookingRequest(0))
		require.NoError(t, err)
	})

	inactive := activeListing()
	inactive.IsActive = false

	rejections := []struct {
		name     string
		ctx      context.Context
		listing  listingModel.Listing
		people   int
		wantCode int
		wantMsg  string
	}{
		{name: "group larger than listing allows", ctx: touristCtx, listing: activeListing(), people: 5, wantCode: http.StatusBadRequest, wantMsg: "Maximum group size is 4"},
		{name: "inactive listing", ctx: touristCtx, listing: inactive, people: 1, wantCode: http.StatusBadRequest, wantMsg: "This tour is currently not available"},
		{name: "missing listing", ctx: touristCtx, listing: listingModel.Listing{}, people: 1, wantCode: http.StatusNotFound, wantMsg: "Listing not found"},
		{
			name:     "guide booking own tour",
			ctx:      shared.WithIdentity(context.Background(), "guide-1", "guide@example.com", constant.RoleTourist),
			listing:  activeListing(),
			people:   1,
			wantCode: http.StatusBadRequest,
			wantMsg:  "You cannot book your own tour",
		},
	}

	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.listingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.listing, nil)
			f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

			_, err := f.svc.Create(tt.ctx, bookingRequest(tt.people))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}

	t.Run("guides cannot book", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(guideCtx, bookingRequest(1))
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestBookingService_Transitions(t *testing.T) {
	statuses := []model.Status{model.StatusPending, model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled}

	legal := map[string]bool{
		"PENDING->CONFIRMED":   true,
		"PENDING->CANCELLED":   true,
		"CONFIRMED->CANCELLED": true,
		"CONFIRMED->COMPLETED": true,
	}

	actions := map[model.Status]func(service.Booking, context.Context, string) (dto.BookingResponse, error){
		model.StatusConfirmed: service.Booking.Confirm,
		model.StatusCancelled: service.Booking.Cancel,
		model.StatusCompleted: service.Booking.Complete,
	}

	for _, from := range statuses {
		for to, action := range actions {
			name := fmt.Sprintf("%s->%s", from, to)

			t.Run(name, func(t *testing.T) {
				f := newFixture(t)

				current := model.Booking{ID: "booking-1", TouristID: "tourist-1", GuideID: "guide-1", Status: from}
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)

				if legal[name] {
					f.repo.EXPECT().
						UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
							assert.Equal(t, to, fields[model.FieldStatus])

							_, args := filter.GetWhereClause()
							assert.Equal(t, from, args[model.FieldStatus])

							return 1, nil
						})

					next := current
					next.Status = to
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(next, nil)
				}

				res, err := action(f.svc, guideCtx, "booking-1")

				if !legal[name] {
					require.Error(t, err)
					assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

					return
				}

				require.NoError(t, err)
				assert.Equal(t, to.String(), res.Status)
			})
		}
	}
}

func TestBookingService_TransitionPermissions(t *testing.T) {
	pending := model.Booking{ID: "booking-1", TouristID: "tourist-1", GuideID: "guide-1", Status: model.StatusPending}
	stranger := shared.WithIdentity(context.Background(), "tourist-2", "other@example.com", constant.RoleTourist)

	tests := []struct {
		name    string
		ctx     context.Context
		action  func(service.Booking, context.Context, string) (dto.BookingResponse, error)
		allowed bool
	}{
		{name: "tourist cannot confirm", ctx: touristCtx, action: service.Booking.Confirm},
		{name: "tourist may cancel", ctx: touristCtx, action: service.Booking.Cancel, allowed: true},
		{name: "stranger cannot cancel", ctx: stranger, action: service.Booking.Cancel},
		{name: "admin may confirm", ctx: adminCtx, action: service.Booking.Confirm, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)

			if tt.allowed {
				f.repo.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
			}

			_, err := tt.action(f.svc, tt.ctx, "booking-1")

			if tt.allowed {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
		})
	}
}

func TestBookingService_ConcurrentTransition(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(model.Booking{ID: "booking-1", GuideID: "guide-1", Status: model.StatusPending}, nil)
	f.repo.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

	_, err := f.svc.Confirm(guideCtx, "booking-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_UpdateStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(guideCtx, "booking-1", dto.UpdateBookingStatusRequest{Status: "COMPLETED"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestBookingService_Get(t *testing.T) {
	booking := model.Booking{ID: "booking-1", TouristID: "tourist-1", GuideID: "guide-1", Status: model.StatusPending}

	tests := []struct {
		name     string
		ctx      context.Context
		wantCode int
	}{
		{name: "tourist", ctx: touristCtx},
		{name: "guide", ctx: guideCtx},
		{name: "admin", ctx: adminCtx},
		{name: "outsider", ctx: shared.WithIdentity(context.Background(), "x", "x@example.com", constant.RoleGuide), wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)

			res, err := f.svc.Get(tt.ctx, "booking-1")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "booking-1", res.ID)
		})
	}
}

func TestBookingService_Stats(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			where, args := filter.GetWhereClause()
			assert.Contains(t, where, "bookings.guide_id = :guide_id")

			switch args[model.FieldStatus] {
			case model.StatusPending:
				return 1, nil
			case model.StatusCompleted:
				return 2, nil
			case nil:
				return 3, nil
			default:
				return 0, nil
			}
		}).Times(5)
	f.repo.EXPECT().Sum(gomock.Any(), "bookings.total_amount", gomock.Any()).Return(260.0, nil)

	res, err := f.svc.Stats(guideCtx)
	require.NoError(t, err)

	assert.Equal(t, dto.StatsResponse{Total: 3, Pending: 1, Completed: 2, TotalEarnings: 260}, res)
}

func TestBookingService_GetAll(t *testing.T) {
	f := newFixture(t)

	query := dto.ListBookingsQuery{QueryParams: gDto.QueryParams{Page: 1, Limit: 10}, Status: "PENDING"}

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			where, _ := filter.GetWhereClause()
			assert.Contains(t, where, "bookings.tourist_id = :tourist_id")

			return 1, nil
		})
	f.repo.EXPECT().GetAll(gomock.Any(), query.QueryParams, gomock.Any()).Return([]model.Booking{{ID: "booking-1"}}, nil)

	res, err := f.svc.GetAll(touristCtx, query)
	require.NoError(t, err)
	assert.Len(t, res.Bookings, 1)
	assert.Equal(t, 1, res.Pagination.TotalPages)
}
