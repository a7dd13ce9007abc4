package service

import (
	"context"
	"fmt"
	"localguide/config"
	"localguide/infras/otel"
	bookingModel "localguide/internal/domains/booking/model"
	bookingRepo "localguide/internal/domains/booking/repository"
	"localguide/internal/domains/listing/model"
	"localguide/internal/domains/listing/model/dto"
	"localguide/internal/domains/listing/repository"
	reviewModel "localguide/internal/domains/review/model"
	reviewRepo "localguide/internal/domains/review/repository"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"

	"github.com/rs/zerolog/log"
)

const recentReviewLimit = 10

type Listing interface {
	Create(ctx context.Context, req dto.CreateListingRequest) (dto.ListingResponse, error)
	GetAll(ctx context.Context, query dto.ListListingsQuery) (dto.GetListingsResponse, error)
	GetMine(ctx context.Context, params gDto.QueryParams) (dto.GetListingsResponse, error)
	Get(ctx context.Context, id string) (dto.ListingResponse, error)
	OwnerID(ctx context.Context, id string) (string, error)
	Update(ctx context.Context, id string, req dto.UpdateListingRequest) (dto.ListingResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo        repository.Listing
	bookingRepo bookingRepo.Booking
	reviewRepo  reviewRepo.Review
	cfg         *config.Config
	otel        otel.Otel
}

func New(repo repository.Listing, bookingRepo bookingRepo.Booking, reviewRepo reviewRepo.Review, cfg *config.Config, otel otel.Otel) Listing {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
		cfg:         cfg,
		otel:        otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateListingRequest) (res dto.ListingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if shared.GetUserRole(ctx) != constant.RoleGuide {
		return res, failure.Forbidden("Only guides can create listings")
	}

	listing := req.ToModel(shared.GetUserID(ctx), shared.GetActor(ctx))

	if err = s.repo.Insert(ctx, listing); err != nil {
		log.Error().Err(err).Msg("failed to create listing")

		return res, fmt.Errorf("failed to create listing: %w", err)
	}

	created, err := s.get(ctx, listing.ID)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	res.FromModel(created)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, query dto.ListListingsQuery) (res dto.GetListingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, query.QueryParams, query.Filter())
}

func (s *serviceImpl) GetMine(ctx context.Context, params gDto.QueryParams) (res dto.GetListingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	query := dto.ListListingsQuery{QueryParams: params}
	query.SortBy = dto.SortNewest
	query.ApplySort()

	filter := gDto.NewFilterGroup(gDto.Filter{
		Field:    model.FieldGuideID,
		Table:    model.TableName,
		Operator: gDto.FilterOperatorEq,
		Value:    shared.GetUserID(ctx),
	})

	return s.list(ctx, query.QueryParams, filter)
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetListingsResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count listings")

		return res, fmt.Errorf("failed to count listings: %w", err)
	}

	listings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get listings")

		return res, fmt.Errorf("failed to get listings: %w", err)
	}

	res.FromModels(listings, total, params)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ListingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	listing, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	guideRating, err := s.reviewRepo.Avg(ctx, reviewModel.TableName+"."+reviewModel.FieldRating, gDto.NewFilterGroup(gDto.Filter{
		Field:    reviewModel.FieldGuideID,
		Table:    reviewModel.TableName,
		Operator: gDto.FilterOperatorEq,
		Value:    listing.GuideID,
	}))
	if err != nil {
		log.Error().Err(err).Msg("failed to get guide rating")

		return res, fmt.Errorf("failed to get guide rating: %w", err)
	}

	reviews, err := s.reviewRepo.GetAll(ctx, gDto.QueryParams{
		Page:    constant.DefaultValuePage,
		Limit:   recentReviewLimit,
		SortBy:  reviewModel.TableName + "." + constant.FieldCreatedAt,
		SortDir: gDto.SortDirDesc,
	}, gDto.NewFilterGroup(gDto.Filter{
		Field:    reviewModel.FieldListingID,
		Table:    reviewModel.TableName,
		Operator: gDto.FilterOperatorEq,
		Value:    listing.ID,
	}))
	if err != nil {
		log.Error().Err(err).Msg("failed to get listing reviews")

		return res, fmt.Errorf("failed to get listing reviews: %w", err)
	}

	res.FromModel(listing)
	res.AttachDetail(guideRating, reviews)

	return res, nil
}

func (s *serviceImpl) OwnerID(ctx context.Context, id string) (string, error) {
	listing, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}

	return listing.GuideID, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateListingRequest) (res dto.ListingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateListingRequest{}) {
		return res, failure.BadRequestFromString("update request cannot be empty")
	}

	listing, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	if listing.GuideID != shared.GetUserID(ctx) && !shared.IsAdmin(ctx) {
		return res, failure.Forbidden("You can only update your own listings")
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	if err = s.repo.Update(ctx, shared.TransformFields(req, shared.GetActor(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update listing")

		return res, fmt.Errorf("failed to update listing: %w", err)
	}

	updated, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	listing, err := s.get(ctx, id)
	if err != nil {
		return err // nolint:wrapcheck
	}

	if listing.GuideID != shared.GetUserID(ctx) && !shared.IsAdmin(ctx) {
		return failure.Forbidden("You can only delete your own listings")
	}

	active, err := s.bookingRepo.Exist(ctx, gDto.NewFilterGroup(
		gDto.Filter{Field: bookingModel.FieldListingID, Table: bookingModel.TableName, Operator: gDto.FilterOperatorEq, Value: id},
		gDto.Filter{
			Field:    bookingModel.FieldStatus,
			Table:    bookingModel.TableName,
			Operator: gDto.FilterOperatorIn,
			Value:    []bookingModel.Status{bookingModel.StatusPending, bookingModel.StatusConfirmed},
		},
	))
	if err != nil {
		log.Error().Err(err).Msg("failed to check active bookings")

		return fmt.Errorf("failed to check active bookings: %w", err)
	}

	if active {
		return failure.BadRequestFromString("Cannot delete listing with active bookings")
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete listing")

		return fmt.Errorf("failed to delete listing: %w", err)
	}

	return nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.Listing, error) {
	listing, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get listing")

		return listing, fmt.Errorf("failed to get listing: %w", err)
	}

	if listing.ID == constant.Empty {
		return listing, failure.NotFound("Listing not found")
	}

	return listing, nil
}
