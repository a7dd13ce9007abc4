package payment

import (
	"io"
	"net/http"

	"localguide/infras/otel"
	"localguide/internal/domains/payment/model/dto"
	"localguide/internal/domains/payment/service"
	"localguide/shared/constant"
	"localguide/shared/failure"
	"localguide/shared/validator"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const paramBookingID = "bookingId"

type Handler struct {
	service    service.Payment
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Payment, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		// signed by the provider, never by a user session
		routerGroup.Post("/webhook", handler.Webhook)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.middleware.Authenticate)

			protected.Group(func(tourist chi.Router) {
				tourist.Use(handler.middleware.Authorize(constant.RoleTourist))

				tourist.Post("/create-payment-intent", handler.CreatePaymentIntent)
				tourist.Post("/create-checkout-session", handler.CreateCheckoutSession)
				tourist.Post("/confirm", handler.ConfirmPayment)
			})

			protected.Get("/", handler.GetPayments)
			protected.Get("/stats", handler.GetPaymentStats)
			protected.Get("/booking/{"+paramBookingID+"}", handler.GetPaymentByBooking)
			protected.Get("/{id}", handler.GetPaymentByID)
			protected.With(handler.middleware.Authorize(constant.RoleAdmin)).Post("/{id}/refund", handler.RefundPayment)
		})
	})
}

// CreatePaymentIntent starts an embedded card payment for a confirmed booking.
// @Summary Create a payment intent
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "Create Payment Request"
// @Success 200 {object} response.Data[dto.PaymentIntentResponse] "Payment intent"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/create-payment-intent [post]
// @Security BearerAuth
func (handler *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePaymentIntent")
	defer scope.End()

	req := dto.CreatePaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.CreateIntent(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create payment intent")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CreateCheckoutSession starts a hosted checkout for a confirmed booking.
// @Summary Create a checkout session
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "Create Payment Request"
// @Success 200 {object} response.Data[dto.CheckoutSessionResponse] "Checkout session"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/create-checkout-session [post]
// @Security BearerAuth
func (handler *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateCheckoutSession")
	defer scope.End()

	req := dto.CreatePaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.CreateCheckoutSession(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create checkout session")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// ConfirmPayment re-checks an intent with the provider and marks the payment as paid.
// @Summary Confirm a payment
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.ConfirmPaymentRequest true "Confirm Payment Request"
// @Success 200 {object} response.Data[dto.PaymentResponse] "Payment confirmed successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmPayment")
	defer scope.End()

	req := dto.ConfirmPaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Confirm(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm payment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment confirmed successfully")

	response.WithJSONMessage(w, http.StatusOK, "Payment confirmed successfully", res)
}

// Webhook receives provider events. The body is read raw because the signature covers its exact bytes.
// @Summary Payment provider webhook
// @Tags Payment
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Provider signature"
// @Success 200 {object} response.Data[dto.WebhookResponse] "Event received"
// @Failure 400 {object} response.Error
// @Router /v1/payments/webhook [post]
func (handler *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Webhook")
	defer scope.End()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constant.WebhookMaxBytes))
	if err != nil {
		err = failure.BadRequestFromString("Webhook Error: unreadable body")

		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read webhook body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.HandleWebhook(ctx, payload, r.Header.Get(constant.RequestHeaderStripeSignature))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to handle webhook")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// RefundPayment refunds a paid booking and cancels it.
// @Summary Refund a payment
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body dto.RefundPaymentRequest false "Refund Request"
// @Success 200 {object} response.Data[dto.PaymentResponse] "Refund processed successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/{id}/refund [post]
// @Security BearerAuth
func (handler *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefundPayment")
	defer scope.End()

	req := dto.RefundPaymentRequest{}

	// the reason is optional, so an empty body is accepted
	if r.ContentLength != 0 {
		if err := validator.Validate(r.Body, &req); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to validate request body")

			response.WithError(w, err)

			return
		}
	}

	res, err := handler.service.Refund(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to refund payment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Refund processed successfully")

	response.WithJSONMessage(w, http.StatusOK, "Refund processed successfully", res)
}

// GetPayments lists payments visible to the caller.
// @Summary Get payments
// @Tags Payment
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param status query string false "Payment status"
// @Success 200 {object} response.Data[dto.GetPaymentsResponse] "List of payments"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments [get]
// @Security BearerAuth
func (handler *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPayments")
	defer scope.End()

	query := dto.ListPaymentsQuery{}
	query.FromRequest(r)

	res, err := handler.service.GetAll(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Payment statistics
// @Tags Payment
// @Produce json
// @Success 200 {object} response.Data[dto.StatsResponse] "Payment statistics"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/stats [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentStats(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentStats")
	defer scope.End()

	res, err := handler.service.Stats(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payment stats")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Get a payment by ID
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse] "Payment details"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payment by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Get the payment of a booking
// @Tags Payment
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Success 200 {object} response.Data[dto.PaymentResponse] "Payment details"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/booking/{bookingId} [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentByBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentByBooking")
	defer scope.End()

	res, err := handler.service.GetByBooking(ctx, chi.URLParam(r, paramBookingID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payment by booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
