package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"localguide/config"
	"localguide/infras/otel"
	"localguide/internal/domains/booking/model"
	"localguide/internal/domains/booking/model/dto"
	"localguide/internal/domains/booking/repository"
	listingModel "localguide/internal/domains/listing/model"
	listingRepo "localguide/internal/domains/listing/repository"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, query dto.ListBookingsQuery) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (dto.BookingResponse, error)
	Confirm(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	Complete(ctx context.Context, id string) (dto.BookingResponse, error)
	Stats(ctx context.Context) (dto.StatsResponse, error)
}

type serviceImpl struct {
	repo        repository.Booking
	listingRepo listingRepo.Listing
	cfg         *config.Config
	otel        otel.Otel
}

func New(repo repository.Booking, listingRepo listingRepo.Listing, cfg *config.Config, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:        repo,
		listingRepo: listingRepo,
		cfg:         cfg,
		otel:        otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID := shared.GetUserID(ctx)

	if shared.GetUserRole(ctx) != constant.RoleTourist {
		return res, failure.Forbidden("Only tourists can book tours")
	}

	listing, err := s.listingRepo.Get(ctx, shared.FilterByID(req.ListingID, listingModel.FieldID, listingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get listing")

		return res, fmt.Errorf("failed to get listing: %w", err)
	}

	if listing.ID == constant.Empty {
		return res, failure.NotFound("Listing not found")
	}

	if !listing.IsActive {
		return res, failure.BadRequestFromString("This tour is currently not available")
	}

	if listing.GuideID == userID {
		return res, failure.BadRequestFromString("You cannot book your own tour")
	}

	if req.Headcount() > listing.MaxGroupSize {
		return res, failure.BadRequestFromString(fmt.Sprintf("Maximum group size is %d", listing.MaxGroupSize))
	}

	endTime, err := model.EndTime(req.StartTime, listing.Duration)
	if err != nil {
		return res, failure.BadRequestFromString("Start time must be in HH:MM format")
	}

	booking, err := req.ToModel(userID, listing.GuideID, listing.TourFee, endTime, shared.GetActor(ctx))
	if err != nil {
		return res, failure.BadRequestFromString("Booking date must be in YYYY-MM-DD format")
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	created, err := s.get(ctx, booking.ID)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	res.FromModel(created)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, query dto.ListBookingsQuery) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := query.Filter(shared.GetUserID(ctx), shared.GetUserRole(ctx))

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, query.QueryParams, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, query.QueryParams)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	if !isParticipant(ctx, booking) {
		return res, failure.Forbidden("You do not have access to this booking")
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (dto.BookingResponse, error) {
	switch model.Status(req.Status) {
	case model.StatusConfirmed:
		return s.Confirm(ctx, id)
	case model.StatusCancelled:
		return s.Cancel(ctx, id)
	default:
		return dto.BookingResponse{}, failure.BadRequestFromString("status must be one of CONFIRMED, CANCELLED")
	}
}

func (s *serviceImpl) Confirm(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusConfirmed, isGuideOrAdmin,
		"Only the guide can confirm this booking", "Can only confirm pending bookings")
}

func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusCancelled, isParticipant,
		"You cannot cancel this booking", "Cannot cancel %s bookings")
}

func (s *serviceImpl) Complete(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Complete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusCompleted, isGuideOrAdmin,
		"Only the guide can complete this booking", "Can only complete confirmed bookings")
}

// transition moves a booking along one edge of the status machine. The write is conditioned on
// the status that was read, so two racing transitions cannot both apply.
func (s *serviceImpl) transition(
	ctx context.Context,
	id string,
	next model.Status,
	allowed func(context.Context, model.Booking) bool,
	forbidden, illegal string,
) (res dto.BookingResponse, err error) {
	booking, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	if !allowed(ctx, booking) {
		return res, failure.Forbidden(forbidden)
	}

	if !booking.Status.CanTransitionTo(next) {
		if strings.Contains(illegal, "%s") {
			illegal = fmt.Sprintf(illegal, strings.ToLower(booking.Status.String()))
		}

		return res, failure.BadRequestFromString(illegal)
	}

	fields := shared.TransformFields(struct {
		Status model.Status `db:"status"`
	}{next}, shared.GetActor(ctx))

	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	filter.Add(gDto.Filter{Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: booking.Status})

	affected, err := s.repo.UpdateCount(ctx, fields, filter)
	if err != nil {
		log.Error().Err(err).Str("status", next.String()).Msg("failed to update booking status")

		return res, fmt.Errorf("failed to update booking status: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict("Booking status changed, please retry")
	}

	log.Info().Str("booking", id).Str("from", booking.Status.String()).Str("to", next.String()).Msg("booking status changed")

	updated, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Stats(ctx context.Context) (res dto.StatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Stats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	role := shared.GetUserRole(ctx)
	scopeFilter := dto.ScopeFilter(shared.GetUserID(ctx), role)

	counts := map[model.Status]*int{
		model.StatusPending:   &res.Pending,
		model.StatusConfirmed: &res.Confirmed,
		model.StatusCompleted: &res.Completed,
		model.StatusCancelled: &res.Cancelled,
	}

	if res.Total, err = s.repo.Count(ctx, scopeFilter); err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	for status, target := range counts {
		if *target, err = s.repo.Count(ctx, withStatus(scopeFilter, status)); err != nil {
			log.Error().Err(err).Str("status", status.String()).Msg("failed to count bookings")

			return res, fmt.Errorf("failed to count bookings: %w", err)
		}
	}

	if role == constant.RoleGuide {
		expr := model.TableName + "." + model.FieldTotalAmount
		if res.TotalEarnings, err = s.repo.Sum(ctx, expr, withStatus(scopeFilter, model.StatusCompleted)); err != nil {
			log.Error().Err(err).Msg("failed to sum guide earnings")

			return res, fmt.Errorf("failed to sum guide earnings: %w", err)
		}
	}

	return res, nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("Booking not found")
	}

	return booking, nil
}

func withStatus(scope gDto.FilterGroup, status model.Status) gDto.FilterGroup {
	filter := gDto.NewFilterGroup(slices.Clone(scope.Filters)...)
	filter.Add(gDto.Filter{Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: status})

	return filter
}

func isParticipant(ctx context.Context, booking model.Booking) bool {
	userID := shared.GetUserID(ctx)

	return shared.IsAdmin(ctx) || booking.TouristID == userID || booking.GuideID == userID
}

func isGuideOrAdmin(ctx context.Context, booking model.Booking) bool {
	return shared.IsAdmin(ctx) || booking.GuideID == shared.GetUserID(ctx)
}
