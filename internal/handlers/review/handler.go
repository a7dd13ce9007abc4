package review

import (
	"net/http"

	"localguide/infras/otel"
	"localguide/internal/domains/review/model/dto"
	"localguide/internal/domains/review/service"
	"localguide/shared/constant"
	"localguide/shared/validator"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const paramGuideID = "guideId"

type Handler struct {
	service    service.Review
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Review, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reviews", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetReviews)
		routerGroup.Get("/guide/{"+paramGuideID+"}", handler.GetGuideReviews)
		routerGroup.Get("/{id}", handler.GetReviewByID)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.middleware.Authenticate)

			protected.With(handler.middleware.Authorize(constant.RoleTourist)).Post("/", handler.CreateReview)
			protected.With(handler.middleware.Authorize(constant.RoleTourist)).Get("/my/reviews", handler.GetMyReviews)
			protected.With(handler.middleware.Authorize(constant.RoleTourist)).Patch("/{id}", handler.UpdateReview)
			protected.With(handler.middleware.Authorize(constant.RoleTourist, constant.RoleAdmin)).Delete("/{id}", handler.DeleteReview)
		})
	})
}

// CreateReview rates a completed tour.
// @Summary Review a completed booking
// @Tags Review
// @Accept json
// @Produce json
// @Param request body dto.CreateReviewRequest true "Create Review Request"
// @Success 201 {object} response.Data[dto.ReviewResponse] "Review created successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reviews [post]
// @Security BearerAuth
func (handler *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReview")
	defer scope.End()

	req := dto.CreateReviewRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create review")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Review created successfully")

	response.WithJSONMessage(w, http.StatusCreated, "Review created successfully", res)
}

// GetReviews lists reviews.
// @Summary Get reviews
// @Tags Review
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param guide_id query string false "Guide ID"
// @Param listing_id query string false "Listing ID"
// @Param rating query int false "Exact rating"
// @Success 200 {object} response.Data[dto.GetReviewsResponse] "List of reviews"
// @Failure 500 {object} response.Error
// @Router /v1/reviews [get]
func (handler *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReviews")
	defer scope.End()

	query := dto.ListReviewsQuery{}
	query.FromRequest(r)

	res, err := handler.service.GetAll(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reviews")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Get reviews of a guide
// @Tags Review
// @Produce json
// @Param guideId path string true "Guide ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Data[dto.GetReviewsResponse] "List of reviews"
// @Failure 500 {object} response.Error
// @Router /v1/reviews/guide/{guideId} [get]
func (handler *Handler) GetGuideReviews(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGuideReviews")
	defer scope.End()

	query := dto.ListReviewsQuery{}
	query.FromRequest(r)

	res, err := handler.service.GetByGuide(ctx, chi.URLParam(r, paramGuideID), query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get guide reviews")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Get my reviews
// @Tags Review
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Data[dto.GetReviewsResponse] "List of reviews"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reviews/my/reviews [get]
// @Security BearerAuth
func (handler *Handler) GetMyReviews(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyReviews")
	defer scope.End()

	query := dto.ListReviewsQuery{}
	query.FromRequest(r)

	res, err := handler.service.GetMine(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get my reviews")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Get a review by ID
// @Tags Review
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} response.Data[dto.ReviewResponse] "Review details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reviews/{id} [get]
func (handler *Handler) GetReviewByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReviewByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get review by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateReview edits the caller's own review.
// @Summary Update a review
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param request body dto.UpdateReviewRequest true "Update Review Request"
// @Success 200 {object} response.Data[dto.ReviewResponse] "Review updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reviews/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateReview")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateReviewRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update review")

		response.WithError(w, err)

		return
	}

	response.WithJSONMessage(w, http.StatusOK, "Review updated successfully", res)
}

// DeleteReview removes a review. Authors may delete their own, admins any.
// @Summary Delete a review
// @Tags Review
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} response.Message "Review deleted successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reviews/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteReview")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete review")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Review deleted successfully")

	response.WithMessage(w, http.StatusOK, "Review deleted successfully")
}
