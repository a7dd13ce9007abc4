package booking

import (
	"context"
	"net/http"

	"localguide/infras/otel"
	"localguide/internal/domains/booking/model/dto"
	"localguide/internal/domains/booking/service"
	"localguide/shared/constant"
	"localguide/shared/validator"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Booking
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Booking, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Use(handler.middleware.Authenticate)

		routerGroup.With(handler.middleware.Authorize(constant.RoleTourist)).Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/stats", handler.GetBookingStats)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Patch("/{id}/status", handler.UpdateBookingStatus)
		routerGroup.With(handler.middleware.Authorize(constant.RoleGuide, constant.RoleAdmin)).Patch("/{id}/confirm", handler.ConfirmBooking)
		routerGroup.Patch("/{id}/cancel", handler.CancelBooking)
		routerGroup.With(handler.middleware.Authorize(constant.RoleGuide, constant.RoleAdmin)).Patch("/{id}/complete", handler.CompleteBooking)
	})
}

// CreateBooking handles the creation of a new booking.
// @Summary Book a tour
// @Description Book a listing for a future date. The booking starts pending until the guide confirms it.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created successfully")

	response.WithJSONMessage(writer, http.StatusCreated, "Booking created successfully", res)
}

// GetBookings lists the caller's bookings.
// @Summary Get bookings
// @Description Tourists see their trips, guides their tours and admins every booking.
// @Tags Booking
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param sort_by query string false "createdAt, bookingDate or totalAmount"
// @Param sort_order query string false "asc or desc"
// @Param status query string false "Booking status"
// @Param start_date query string false "From date (YYYY-MM-DD)"
// @Param end_date query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	query := dto.ListBookingsQuery{}
	query.FromRequest(request)

	res, err := handler.service.GetAll(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetBookingStats counts the caller's bookings per status.
// @Summary Booking statistics
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Data[dto.StatsResponse] "Booking statistics"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/stats [get]
// @Security BearerAuth
func (handler *Handler) GetBookingStats(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingStats")
	defer scope.End()

	res, err := handler.service.Stats(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking stats")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetBookingByID returns one booking to its tourist, its guide or an admin.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// UpdateBookingStatus confirms or cancels a booking.
// @Summary Update booking status
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingStatusRequest true "Status Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking status updated"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateBookingStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBookingStatus")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.UpdateBookingStatusRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.UpdateStatus(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking status")

		response.WithError(writer, err)

		return
	}

	response.WithJSONMessage(writer, http.StatusOK, "Booking status updated", res)
}

// ConfirmBooking accepts a pending booking.
// @Summary Confirm a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking confirmed"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/confirm [patch]
// @Security BearerAuth
func (handler *Handler) ConfirmBooking(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, "ConfirmBooking", "Booking confirmed", handler.service.Confirm)
}

// CancelBooking cancels a pending or confirmed booking.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking cancelled"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/cancel [patch]
// @Security BearerAuth
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, "CancelBooking", "Booking cancelled", handler.service.Cancel)
}

// CompleteBooking marks a confirmed tour as done.
// @Summary Complete a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking marked as completed"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/complete [patch]
// @Security BearerAuth
func (handler *Handler) CompleteBooking(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, "CompleteBooking", "Booking marked as completed", handler.service.Complete)
}

func (handler *Handler) transition(
	writer http.ResponseWriter,
	request *http.Request,
	name, message string,
	apply func(ctx context.Context, id string) (dto.BookingResponse, error),
) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := apply(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking", id).Msg("failed to change booking status")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent(message)

	response.WithJSONMessage(writer, http.StatusOK, message, res)
}
