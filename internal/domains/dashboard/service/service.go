package service

import (
	"context"
	"fmt"
	"math"
	"localguide/config"
	"localguide/infras/otel"
	bookingModel "localguide/internal/domains/booking/model"
	bookingRepo "localguide/internal/domains/booking/repository"
	"localguide/internal/domains/dashboard/model/dto"
	listingModel "localguide/internal/domains/listing/model"
	listingRepo "localguide/internal/domains/listing/repository"
	paymentModel "localguide/internal/domains/payment/model"
	paymentRepo "localguide/internal/domains/payment/repository"
	reviewModel "localguide/internal/domains/review/model"
	reviewRepo "localguide/internal/domains/review/repository"
	userModel "localguide/internal/domains/user/model"
	userRepo "localguide/internal/domains/user/repository"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
	"localguide/shared/timezone"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const recentLimit = 5

// Dashboard computes read-only aggregates at request time. Nothing here is cached.
type Dashboard interface {
	Get(ctx context.Context) (any, error)
	Admin(ctx context.Context) (dto.AdminDashboard, error)
	Guide(ctx context.Context) (dto.GuideDashboard, error)
	Tourist(ctx context.Context) (dto.TouristDashboard, error)
}

type serviceImpl struct {
	userRepo    userRepo.User
	profileRepo userRepo.Profile
	listingRepo listingRepo.Listing
	bookingRepo bookingRepo.Booking
	paymentRepo paymentRepo.Payment
	reviewRepo  reviewRepo.Review
	cfg         *config.Config
	otel        otel.Otel
}

func New(
	userRepo userRepo.User,
	profileRepo userRepo.Profile,
	listingRepo listingRepo.Listing,
	bookingRepo bookingRepo.Booking,
	paymentRepo paymentRepo.Payment,
	reviewRepo reviewRepo.Review,
	cfg *config.Config,
	otel otel.Otel,
) Dashboard {
	return &serviceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		reviewRepo:  reviewRepo,
		cfg:         cfg,
		otel:        otel,
	}
}

// Get returns the dashboard of the caller's role.
func (s *serviceImpl) Get(ctx context.Context) (any, error) {
	switch shared.GetUserRole(ctx) {
	case constant.RoleAdmin:
		return s.Admin(ctx)
	case constant.RoleGuide:
		return s.Guide(ctx)
	case constant.RoleTourist:
		return s.Tourist(ctx)
	default:
		return nil, failure.ForbiddenError
	}
}

func (s *serviceImpl) Admin(ctx context.Context) (res dto.AdminDashboard, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Admin")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var (
		stats    = &res.Stats
		bookings []bookingModel.Booking
		users    []userModel.User
		guides   []userModel.Profile
	)

	err = gather(ctx, map[string]func(context.Context) error{
		"users":              countInto(&stats.TotalUsers, s.userRepo.Count, gDto.NewFilterGroup()),
		"guides":             countInto(&stats.TotalGuides, s.userRepo.Count, userRole(constant.RoleGuide)),
		"tourists":           countInto(&stats.TotalTourists, s.userRepo.Count, userRole(constant.RoleTourist)),
		"listings":           countInto(&stats.TotalListings, s.listingRepo.Count, gDto.NewFilterGroup()),
		"bookings":           countInto(&stats.TotalBookings, s.bookingRepo.Count, gDto.NewFilterGroup()),
		"pending bookings":   countInto(&stats.PendingBookings, s.bookingRepo.Count, bookingStatus(bookingModel.StatusPending)),
		"completed bookings": countInto(&stats.CompletedBookings, s.bookingRepo.Count, bookingStatus(bookingModel.StatusCompleted)),
		"revenue": func(ctx context.Context) (err error) {
			stats.TotalRevenue, err = s.paymentRepo.Sum(ctx, paymentAmount, paid())

			return err
		},
		"recent bookings": func(ctx context.Context) (err error) {
			bookings, err = s.bookingRepo.GetAll(ctx, newest(bookingModel.TableName), gDto.NewFilterGroup())

			return err
		},
		"recent users": func(ctx context.Context) (err error) {
			users, err = s.userRepo.GetAll(ctx, newest(userModel.TableName), gDto.NewFilterGroup())

			return err
		},
		"top guides": func(ctx context.Context) (err error) {
			params := gDto.QueryParams{
				Page:    1,
				Limit:   recentLimit,
				SortBy:  "COALESCE(" + userModel.RatingTableAlias + "." + userModel.FieldReviewCount + ", 0)",
				SortDir: gDto.SortDirDesc,
			}
			guides, err = s.profileRepo.GetAll(ctx, params, userRole(constant.RoleGuide))

			return err
		},
	})
	if err != nil {
		return res, err
	}

	res.FromModels(bookings, users, guides)

	return res, nil
}

func (s *serviceImpl) Guide(ctx context.Context) (res dto.GuideDashboard, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Guide")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	guideID := shared.GetUserID(ctx)
	stats := &res.Stats

	var (
		upcoming []bookingModel.Booking
		reviews  []reviewModel.Review
	)

	ownListings := func() gDto.FilterGroup {
		return eq(listingModel.TableName, listingModel.FieldGuideID, guideID)
	}

	guideBookings := func(status bookingModel.Status) gDto.FilterGroup {
		filter := eq(bookingModel.TableName, bookingModel.FieldGuideID, guideID)
		if status != "" {
			filter.Add(gDto.Filter{Field: bookingModel.FieldStatus, Table: bookingModel.TableName, Operator: gDto.FilterOperatorEq, Value: status})
		}

		return filter
	}

	activeListings := ownListings()
	activeListings.Add(gDto.Filter{Field: listingModel.FieldIsActive, Table: listingModel.TableName, Operator: gDto.FilterOperatorEq, Value: true})

	earnings := paid()
	earnings.Add(gDto.Filter{ArgName: "earning_guide_id", Field: bookingModel.FieldGuideID, Table: paymentModel.BookingTableAlias, Operator: gDto.FilterOperatorEq, Value: guideID})

	err = gather(ctx, map[string]func(context.Context) error{
		"listings":           countInto(&stats.TotalListings, s.listingRepo.Count, ownListings()),
		"active listings":    countInto(&stats.ActiveListings, s.listingRepo.Count, activeListings),
		"bookings":           countInto(&stats.TotalBookings, s.bookingRepo.Count, guideBookings("")),
		"pending bookings":   countInto(&stats.PendingBookings, s.bookingRepo.Count, guideBookings(bookingModel.StatusPending)),
		"confirmed bookings": countInto(&stats.ConfirmedBookings, s.bookingRepo.Count, guideBookings(bookingModel.StatusConfirmed)),
		"completed bookings": countInto(&stats.CompletedBookings, s.bookingRepo.Count, guideBookings(bookingModel.StatusCompleted)),
		"reviews":            countInto(&stats.TotalReviews, s.reviewRepo.Count, eq(reviewModel.TableName, reviewModel.FieldGuideID, guideID)),
		"earnings": func(ctx context.Context) (err error) {
			stats.TotalEarnings, err = s.paymentRepo.Sum(ctx, paymentAmount, earnings)

			return err
		},
		"rating": func(ctx context.Context) error {
			expr := reviewModel.TableName + "." + reviewModel.FieldRating
			avg, err := s.reviewRepo.Avg(ctx, expr, eq(reviewModel.TableName, reviewModel.FieldGuideID, guideID))
			stats.AverageRating = math.Round(avg*10) / 10

			return err
		},
		"upcoming bookings": func(ctx context.Context) (err error) {
			upcoming, err = s.bookingRepo.GetAll(ctx, soonest(), upcomingOf(bookingModel.FieldGuideID, guideID))

			return err
		},
		"recent reviews": func(ctx context.Context) (err error) {
			reviews, err = s.reviewRepo.GetAll(ctx, newest(reviewModel.TableName), eq(reviewModel.TableName, reviewModel.FieldGuideID, guideID))

			return err
		},
	})
	if err != nil {
		return res, err
	}

	res.FromModels(upcoming, reviews)

	return res, nil
}

func (s *serviceImpl) Tourist(ctx context.Context) (res dto.TouristDashboard, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Tourist")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	touristID := shared.GetUserID(ctx)
	stats := &res.Stats

	var upcoming, past []bookingModel.Booking

	completed := func() gDto.FilterGroup {
		filter := eq(bookingModel.TableName, bookingModel.FieldTouristID, touristID)
		filter.Add(gDto.Filter{Field: bookingModel.FieldStatus, Table: bookingModel.TableName, Operator: gDto.FilterOperatorEq, Value: bookingModel.StatusCompleted})

		return filter
	}

	spent := paid()
	spent.Add(gDto.Filter{Field: paymentModel.FieldUserID, Table: paymentModel.TableName, Operator: gDto.FilterOperatorEq, Value: touristID})

	pastParams := gDto.QueryParams{
		Page:    1,
		Limit:   recentLimit,
		SortBy:  bookingModel.TableName + "." + bookingModel.FieldBookingDate,
		SortDir: gDto.SortDirDesc,
	}

	err = gather(ctx, map[string]func(context.Context) error{
		"bookings":           countInto(&stats.TotalBookings, s.bookingRepo.Count, eq(bookingModel.TableName, bookingModel.FieldTouristID, touristID)),
		"upcoming bookings":  countInto(&stats.UpcomingBookings, s.bookingRepo.Count, upcomingOf(bookingModel.FieldTouristID, touristID)),
		"completed bookings": countInto(&stats.CompletedBookings, s.bookingRepo.Count, completed()),
		"reviews":            countInto(&stats.ReviewsGiven, s.reviewRepo.Count, eq(reviewModel.TableName, reviewModel.FieldTouristID, touristID)),
		"spent": func(ctx context.Context) (err error) {
			stats.TotalSpent, err = s.paymentRepo.Sum(ctx, paymentAmount, spent)

			return err
		},
		"upcoming trips": func(ctx context.Context) (err error) {
			upcoming, err = s.bookingRepo.GetAll(ctx, soonest(), upcomingOf(bookingModel.FieldTouristID, touristID))

			return err
		},
		"past trips": func(ctx context.Context) (err error) {
			past, err = s.bookingRepo.GetAll(ctx, pastParams, completed())

			return err
		},
	})
	if err != nil {
		return res, err
	}

	res.FromModels(upcoming, past)

	return res, nil
}

const paymentAmount = paymentModel.TableName + "." + paymentModel.FieldAmount

// gather runs the queries concurrently and fails on the first error.
func gather(ctx context.Context, queries map[string]func(context.Context) error) error {
	group, ctx := errgroup.WithContext(ctx)

	for name, run := range queries {
		group.Go(func() error {
			if err := run(ctx); err != nil {
				log.Error().Err(err).Str("query", name).Msg("failed to load dashboard")

				return fmt.Errorf("failed to load %s: %w", name, err)
			}

			return nil
		})
	}

	return group.Wait() // nolint:wrapcheck
}

func countInto(target *int, count func(context.Context, gDto.FilterGroup) (int, error), filter gDto.FilterGroup) func(context.Context) error {
	return func(ctx context.Context) (err error) {
		*target, err = count(ctx, filter)

		return err
	}
}

func eq(table, field string, value any) gDto.FilterGroup {
	return gDto.NewFilterGroup(gDto.Filter{Field: field, Table: table, Operator: gDto.FilterOperatorEq, Value: value})
}

func userRole(role string) gDto.FilterGroup {
	return eq(userModel.TableName, userModel.FieldRole, role)
}

func bookingStatus(status bookingModel.Status) gDto.FilterGroup {
	return eq(bookingModel.TableName, bookingModel.FieldStatus, status)
}

func paid() gDto.FilterGroup {
	return eq(paymentModel.TableName, paymentModel.FieldStatus, paymentModel.StatusPaid)
}

// upcomingOf matches active bookings from today on for one participant column.
func upcomingOf(field, userID string) gDto.FilterGroup {
	return gDto.NewFilterGroup(
		gDto.Filter{Field: field, Table: bookingModel.TableName, Operator: gDto.FilterOperatorEq, Value: userID},
		gDto.Filter{
			Field:    bookingModel.FieldStatus,
			Table:    bookingModel.TableName,
			Operator: gDto.FilterOperatorIn,
			Value:    []string{bookingModel.StatusPending.String(), bookingModel.StatusConfirmed.String()},
		},
		gDto.Filter{Field: bookingModel.FieldBookingDate, Table: bookingModel.TableName, Operator: gDto.FilterOperatorGreaterEq, Value: timezone.Today()},
	)
}

func newest(table string) gDto.QueryParams {
	return gDto.QueryParams{Page: 1, Limit: recentLimit, SortBy: table + "." + constant.FieldCreatedAt, SortDir: gDto.SortDirDesc}
}

func soonest() gDto.QueryParams {
	return gDto.QueryParams{
		Page:    1,
		Limit:   recentLimit,
		SortBy:  bookingModel.TableName + "." + bookingModel.FieldBookingDate,
		SortDir: gDto.SortDirAsc,
	}
}
