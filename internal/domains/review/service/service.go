package service

import (
	"context"
	"fmt"
	"localguide/config"
	"localguide/infras/otel"
	bookingModel "localguide/internal/domains/booking/model"
	bookingRepo "localguide/internal/domains/booking/repository"
	"localguide/internal/domains/review/model"
	"localguide/internal/domains/review/model/dto"
	"localguide/internal/domains/review/repository"
	"localguide/shared"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"net/http"

	"github.com/rs/zerolog/log"
)

type Review interface {
	Create(ctx context.Context, req dto.CreateReviewRequest) (dto.ReviewResponse, error)
	GetAll(ctx context.Context, query dto.ListReviewsQuery) (dto.GetReviewsResponse, error)
	GetMine(ctx context.Context, query dto.ListReviewsQuery) (dto.GetReviewsResponse, error)
	GetByGuide(ctx context.Context, guideID string, query dto.ListReviewsQuery) (dto.GetReviewsResponse, error)
	Get(ctx context.Context, id string) (dto.ReviewResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateReviewRequest) (dto.ReviewResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo        repository.Review
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	otel        otel.Otel
}

func New(repo repository.Review, bookingRepo bookingRepo.Booking, cfg *config.Config, otel otel.Otel) Review {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		otel:        otel,
	}
}

// Create reviews a completed booking. The pre-check on the booking's review is backed by the
// unique booking_id constraint, so a racing duplicate still ends in Conflict.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReviewRequest) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID := shared.GetUserID(ctx)

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(req.BookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("Booking not found")
	}

	if booking.TouristID != userID {
		return res, failure.Forbidden("You can only review your own bookings")
	}

	if booking.Status != bookingModel.StatusCompleted {
		return res, failure.BadRequestFromString("You can only review completed tours")
	}

	if booking.ReviewID != nil {
		return res, failure.Conflict("You have already reviewed this booking")
	}

	review := req.ToModel(userID, booking.GuideID, booking.ListingID, shared.GetActor(ctx))

	if err = s.repo.Insert(ctx, review); err != nil {
		if failure.IsCode(err, http.StatusConflict) {
			return res, failure.Conflict("You have already reviewed this booking")
		}

		log.Error().Err(err).Msg("failed to create review")

		return res, fmt.Errorf("failed to create review: %w", err)
	}

	created, err := s.get(ctx, review.ID)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	res.FromModel(created)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, query dto.ListReviewsQuery) (res dto.GetReviewsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, query)
}

func (s *serviceImpl) GetMine(ctx context.Context, query dto.ListReviewsQuery) (res dto.GetReviewsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	mine := dto.ListReviewsQuery{QueryParams: query.QueryParams, TouristID: shared.GetUserID(ctx)}

	return s.list(ctx, mine)
}

func (s *serviceImpl) GetByGuide(ctx context.Context, guideID string, query dto.ListReviewsQuery) (res dto.GetReviewsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByGuide")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	byGuide := dto.ListReviewsQuery{QueryParams: query.QueryParams, GuideID: guideID}

	return s.list(ctx, byGuide)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	review, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	res.FromModel(review)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateReviewRequest) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty")
	}

	review, err := s.get(ctx, id)
	if err != nil {
		return res, err // nolint:wrapcheck
	}

	if review.TouristID != shared.GetUserID(ctx) {
		return res, failure.Forbidden("You can only update your own reviews")
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	if err = s.repo.Update(ctx, shared.TransformFields(req, shared.GetActor(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update review")

		return res, fmt.Errorf("failed to update review: %w", err)
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

	review, err := s.get(ctx, id)
	if err != nil {
		return err // nolint:wrapcheck
	}

	if review.TouristID != shared.GetUserID(ctx) && !shared.IsAdmin(ctx) {
		return failure.Forbidden("You can only delete your own reviews")
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete review")

		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}

func (s *serviceImpl) list(ctx context.Context, query dto.ListReviewsQuery) (res dto.GetReviewsResponse, err error) {
	filter := query.Filter()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reviews")

		return res, fmt.Errorf("failed to count reviews: %w", err)
	}

	reviews, err := s.repo.GetAll(ctx, query.QueryParams, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reviews")

		return res, fmt.Errorf("failed to get reviews: %w", err)
	}

	res.FromModels(reviews, total, query.QueryParams)

	return res, nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.Review, error) {
	review, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get review")

		return review, fmt.Errorf("failed to get review: %w", err)
	}

	if review.ID == constant.Empty {
		return review, failure.NotFound("Review not found")
	}

	return review, nil
}
