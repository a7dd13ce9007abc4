package listing

import (
	"net/http"

	"localguide/infras/otel"
	"localguide/internal/domains/listing/model/dto"
	"localguide/internal/domains/listing/service"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/validator"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Listing
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Listing, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/listings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetListings)
		routerGroup.Get("/{id}", handler.GetListingByID)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.middleware.Authenticate)

			protected.With(handler.middleware.Authorize(constant.RoleGuide)).Post("/", handler.CreateListing)
			protected.With(handler.middleware.Authorize(constant.RoleGuide)).Get("/my/listings", handler.GetMyListings)

			protected.Group(func(owned chi.Router) {
				owned.Use(handler.middleware.Authorize(constant.RoleGuide, constant.RoleAdmin))
				owned.Use(handler.middleware.OwnerOrAdmin(handler.owner))

				owned.Patch("/{id}", handler.UpdateListing)
				owned.Delete("/{id}", handler.DeleteListing)
			})
		})
	})
}

func (handler *Handler) owner(r *http.Request) (string, error) {
	return handler.service.OwnerID(r.Context(), chi.URLParam(r, constant.RequestParamID)) // nolint:wrapcheck
}

// CreateListing publishes a new tour.
// @Summary Create a listing
// @Tags Listing
// @Accept json
// @Produce json
// @Param request body dto.CreateListingRequest true "Create Listing Request"
// @Success 201 {object} response.Data[dto.ListingResponse] "Listing created successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/listings [post]
// @Security BearerAuth
func (handler *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateListing")
	defer scope.End()

	req := dto.CreateListingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create listing")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Listing created successfully")

	response.WithJSONMessage(w, http.StatusCreated, "Listing created successfully", res)
}

// GetListings searches active listings.
// @Summary Get listings
// @Tags Listing
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param sort_by query string false "newest, price or rating"
// @Param city query string false "City contains"
// @Param country query string false "Country contains"
// @Param category query string false "Category tag"
// @Param guide_id query string false "Guide ID"
// @Param search query string false "Title or description contains"
// @Param min_price query number false "Minimum tour fee"
// @Param max_price query number false "Maximum tour fee"
// @Param duration query int false "Maximum duration in hours"
// @Success 200 {object} response.Data[dto.GetListingsResponse] "List of listings"
// @Failure 500 {object} response.Error
// @Router /v1/listings [get]
func (handler *Handler) GetListings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetListings")
	defer scope.End()

	query := dto.ListListingsQuery{}
	query.FromRequest(r)

	res, err := handler.service.GetAll(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get listings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetMyListings lists the caller's own listings, including inactive ones.
// @Summary Get my listings
// @Tags Listing
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetListingsResponse] "List of listings"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/listings/my/listings [get]
// @Security BearerAuth
func (handler *Handler) GetMyListings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyListings")
	defer scope.End()

	params := gDto.QueryParams{}
	params.FromRequest(r, true)

	res, err := handler.service.GetMine(ctx, params)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get my listings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetListingByID returns a listing with its guide and reviews.
// @Summary Get a listing by ID
// @Tags Listing
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} response.Data[dto.ListingResponse] "Listing details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/listings/{id} [get]
func (handler *Handler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetListingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get listing by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateListing changes a listing owned by the caller.
// @Summary Update a listing
// @Tags Listing
// @Accept json
// @Produce json
// @Param id path string true "Listing ID"
// @Param request body dto.UpdateListingRequest true "Update Listing Request"
// @Success 200 {object} response.Data[dto.ListingResponse] "Listing updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/listings/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateListing")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateListingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update listing")

		response.WithError(w, err)

		return
	}

	response.WithJSONMessage(w, http.StatusOK, "Listing updated successfully", res)
}

// DeleteListing removes a listing without active bookings.
// @Summary Delete a listing
// @Tags Listing
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} response.Message "Listing deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/listings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteListing")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete listing")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Listing deleted successfully")

	response.WithMessage(w, http.StatusOK, "Listing deleted successfully")
}
