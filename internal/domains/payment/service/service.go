package service

import (
	"context"
	"fmt"
	"localguide/config"
	"localguide/infras/otel"
	"localguide/infras/stripe"
	bookingModel "localguide/internal/domains/booking/model"
	bookingRepo "localguide/internal/domains/booking/repository"
	listingModel "localguide/internal/domains/listing/model"
	listingRepo "localguide/internal/domains/listing/repository"
	"localguide/internal/domains/payment/model"
	"localguide/internal/domains/payment/model/dto"
	"localguide/internal/domains/payment/repository"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"localguide/shared/failure"
	"localguide/shared/transaction"
	"net/http"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const checkoutDateFormat = "Jan 2, 2006"

type Payment interface {
	CreateIntent(ctx context.Context, req dto.CreatePaymentRequest) (dto.PaymentIntentResponse, error)
	CreateCheckoutSession(ctx context.Context, req dto.CreatePaymentRequest) (dto.CheckoutSessionResponse, error)
	Confirm(ctx context.Context, req dto.ConfirmPaymentRequest) (dto.PaymentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (dto.WebhookResponse, error)
	Refund(ctx context.Context, id string, req dto.RefundPaymentRequest) (dto.PaymentResponse, error)
	GetAll(ctx context.Context, query dto.ListPaymentsQuery) (dto.GetPaymentsResponse, error)
	Get(ctx context.Context, id string) (dto.PaymentResponse, error)
	GetByBooking(ctx context.Context, bookingID string) (dto.PaymentResponse, error)
	Stats(ctx context.Context) (dto.StatsResponse, error)
}

type serviceImpl struct {
	repo        repository.Payment
	bookingRepo bookingRepo.Booking
	listingRepo listingRepo.Listing
	transaction transaction.Transaction
	stripe      stripe.Stripe
	cfg         *config.Config
	otel        otel.Otel
}

func New(
	repo repository.Payment,
	bookingRepo bookingRepo.Booking,
	listingRepo listingRepo.Listing,
	transaction transaction.Transaction,
	stripe stripe.Stripe,
	cfg *config.Config,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		transaction: transaction,
		stripe:      stripe,
		cfg:         cfg,
		otel:        otel,
	}
}

func (s *serviceImpl) CreateIntent(ctx context.Context, req dto.CreatePaymentRequest) (res dto.PaymentIntentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.payableBooking(ctx, req.BookingID)
	if err != nil {
		return res, err
	}

	intent, err := s.stripe.CreatePaymentIntent(ctx, stripe.IntentRequest{
		Amount:       shared.ToMinorUnits(booking.TotalAmount),
		Currency:     s.cfg.External.Stripe.Currency,
		ReceiptEmail: booking.TouristEmail,
		Metadata:     s.metadata(ctx, booking),
	})
	if err != nil {
		return res, failure.BadRequest(err)
	}

	payment, err := s.upsertPending(ctx, dto.PendingPayment{
		BookingID:       booking.ID,
		UserID:          shared.GetUserID(ctx),
		Amount:          booking.TotalAmount,
		Currency:        s.cfg.External.Stripe.Currency,
		StripePaymentID: intent.ID,
	})
	if err != nil {
		return res, err
	}

	res.ClientSecret = intent.ClientSecret
	res.PaymentIntentID = intent.ID
	res.Amount = booking.TotalAmount
	res.Payment.FromModel(payment)

	return res, nil
}

func (s *serviceImpl) CreateCheckoutSession(ctx context.Context, req dto.CreatePaymentRequest) (res dto.CheckoutSessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateCheckoutSession")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.payableBooking(ctx, req.BookingID)
	if err != nil {
		return res, err
	}

	listing, err := s.listingRepo.Get(ctx, shared.FilterByID(booking.ListingID, listingModel.FieldID, listingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get listing")

		return res, fmt.Errorf("failed to get listing: %w", err)
	}

	checkout := stripe.CheckoutRequest{
		Amount:        shared.ToMinorUnits(booking.TotalAmount),
		Currency:      s.cfg.External.Stripe.Currency,
		CustomerEmail: booking.TouristEmail,
		Name:          listing.Title,
		Description:   fmt.Sprintf("Tour with %s on %s", booking.GuideName, booking.BookingDate.Format(checkoutDateFormat)),
		SuccessURL:    s.returnURL(booking.ID, "success"),
		CancelURL:     s.returnURL(booking.ID, "cancelled"),
		Metadata:      s.metadata(ctx, booking),
	}

	if image := listing.FirstImage(); image != "" {
		checkout.Images = []string{image}
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, checkout)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	if _, err = s.upsertPending(ctx, dto.PendingPayment{
		BookingID:       booking.ID,
		UserID:          shared.GetUserID(ctx),
		Amount:          booking.TotalAmount,
		Currency:        s.cfg.External.Stripe.Currency,
		StripeSessionID: session.ID,
	}); err != nil {
		return res, err
	}

	res.SessionID = session.ID
	res.URL = session.URL

	return res, nil
}

// Confirm re-checks the intent with the provider for clients that do not wait for the webhook.
func (s *serviceImpl) Confirm(ctx context.Context, req dto.ConfirmPaymentRequest) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return res, err
	}

	if booking.TouristID != shared.GetUserID(ctx) {
		return res, failure.Forbidden("You can only pay for your own bookings")
	}

	intent, err := s.stripe.GetPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	if intent.BookingID != "" && intent.BookingID != booking.ID {
		return res, failure.BadRequestFromString("Payment does not belong to this booking")
	}

	if intent.Status != stripe.IntentStatusSucceeded {
		return res, failure.BadRequestFromString("Payment has not been completed")
	}

	found, err := s.markPaid(ctx, booking.ID, dto.Settlement{StripePaymentID: intent.ID, PaymentMethod: intent.PaymentMethod})
	if err != nil {
		return res, err
	}

	if !found {
		return res, failure.NotFound("Payment not found")
	}

	payment, err := s.getBy(ctx, model.FieldBookingID, booking.ID)
	if err != nil {
		return res, err
	}

	res.FromModel(payment)

	return res, nil
}

// HandleWebhook reconciles a signed provider event. Nothing is read from the payload before
// the signature is verified, and unrecognised or unattributable events are acknowledged.
func (s *serviceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (res dto.WebhookResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".HandleWebhook")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	event, err := s.stripe.ConstructEvent(payload, signature)
	if err != nil {
		log.Warn().Err(err).Msg("rejected webhook event")

		return res, failure.BadRequestFromString("Webhook Error: " + err.Error())
	}

	scope.SetAttribute("event_type", event.Type)

	logger := log.With().Str("event", event.ID).Str("type", event.Type).Str("booking", event.BookingID).Logger()

	switch event.Type {
	case stripe.EventPaymentSucceeded, stripe.EventCheckoutCompleted, stripe.EventPaymentFailed:
	default:
		logger.Debug().Msg("ignoring webhook event")

		return dto.WebhookResponse{Received: true}, nil
	}

	if event.BookingID == "" {
		logger.Warn().Msg("webhook event has no booking id, dropping")

		return dto.WebhookResponse{Received: true}, nil
	}

	var found bool

	if event.Type == stripe.EventPaymentFailed {
		found, err = s.markFailed(ctx, event.BookingID)
	} else {
		found, err = s.markPaid(ctx, event.BookingID, dto.Settlement{
			StripePaymentID: event.PaymentIntentID,
			StripeSessionID: event.SessionID,
			PaymentMethod:   event.PaymentMethod,
		})
	}

	if err != nil {
		return res, err
	}

	if !found {
		logger.Warn().Msg("no payment recorded for webhook booking, dropping")
	}

	return dto.WebhookResponse{Received: true}, nil
}

// Refund returns the money through the provider, then marks the payment Refunded and the
// booking Cancelled in one transaction.
func (s *serviceImpl) Refund(ctx context.Context, id string, req dto.RefundPaymentRequest) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Refund")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.getBy(ctx, model.FieldID, id)
	if err != nil {
		return res, err
	}

	if !shared.IsAdmin(ctx) {
		return res, failure.Forbidden("Only admin can process refunds")
	}

	if payment.Status != model.StatusPaid {
		return res, failure.BadRequestFromString("Can only refund paid payments")
	}

	if payment.StripePaymentID != "" {
		if err = s.stripe.Refund(ctx, payment.StripePaymentID); err != nil {
			return res, failure.BadRequestFromString("Stripe refund failed: " + err.Error())
		}
	}

	actor := shared.GetActor(ctx)

	err = s.transaction.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		paymentFilter := shared.FilterByID(id, model.FieldID, model.TableName)
		paymentFilter.Add(gDto.Filter{Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: model.StatusPaid})

		refunded := shared.TransformFields(struct {
			Status model.Status `db:"status"`
		}{model.StatusRefunded}, actor)

		if err := s.repo.UpdateTx(ctx, tx, refunded, paymentFilter); err != nil {
			return fmt.Errorf("failed to mark payment refunded: %w", err)
		}

		cancelled := shared.TransformFields(struct {
			Status bookingModel.Status `db:"status"`
		}{bookingModel.StatusCancelled}, actor)

		bookingFilter := shared.FilterByID(payment.BookingID, bookingModel.FieldID, bookingModel.TableName)
		if err := s.bookingRepo.UpdateTx(ctx, tx, cancelled, bookingFilter); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("payment", id).Msg("failed to record refund")

		if failure.IsCode(err, http.StatusNotFound) {
			return res, failure.Conflict("Payment status changed, please retry")
		}

		return res, fmt.Errorf("failed to record refund: %w", err)
	}

	log.Info().Str("payment", id).Str("booking", payment.BookingID).Str("reason", req.Reason).Msg("payment refunded")

	updated, err := s.getBy(ctx, model.FieldID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, query dto.ListPaymentsQuery) (res dto.GetPaymentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := query.Filter(shared.GetUserID(ctx), shared.GetUserRole(ctx))

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count payments")

		return res, fmt.Errorf("failed to count payments: %w", err)
	}

	payments, err := s.repo.GetAll(ctx, query.QueryParams, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payments")

		return res, fmt.Errorf("failed to get payments: %w", err)
	}

	res.FromModels(payments, total, query.QueryParams)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.visible(ctx, model.FieldID, id)
}

func (s *serviceImpl) GetByBooking(ctx context.Context, bookingID string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.visible(ctx, model.FieldBookingID, bookingID)
}

func (s *serviceImpl) Stats(ctx context.Context) (res dto.StatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Stats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scopeFilter := dto.ScopeFilter(shared.GetUserID(ctx), shared.GetUserRole(ctx))

	counts := map[model.Status]*int{
		model.StatusPaid:     &res.Paid,
		model.StatusPending:  &res.Pending,
		model.StatusRefunded: &res.Refunded,
		model.StatusFailed:   &res.Failed,
	}

	if res.Total, err = s.repo.Count(ctx, scopeFilter); err != nil {
		log.Error().Err(err).Msg("failed to count payments")

		return res, fmt.Errorf("failed to count payments: %w", err)
	}

	for status, target := range counts {
		if *target, err = s.repo.Count(ctx, withStatus(scopeFilter, status)); err != nil {
			log.Error().Err(err).Str("status", status.String()).Msg("failed to count payments")

			return res, fmt.Errorf("failed to count payments: %w", err)
		}
	}

	expr := model.TableName + "." + model.FieldAmount
	if res.TotalRevenue, err = s.repo.Sum(ctx, expr, withStatus(scopeFilter, model.StatusPaid)); err != nil {
		log.Error().Err(err).Msg("failed to sum payments")

		return res, fmt.Errorf("failed to sum payments: %w", err)
	}

	return res, nil
}

// markPaid applies the Paid transition at most once. The write only matches rows still in a
// payable status, so a webhook racing an explicit confirmation cannot apply it twice.
// It reports whether a payment exists for the booking.
func (s *serviceImpl) markPaid(ctx context.Context, bookingID string, settlement dto.Settlement) (bool, error) {
	payment, err := s.getByBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}

	if payment.ID == constant.Empty {
		return false, nil
	}

	if payment.Status == model.StatusPaid {
		log.Info().Str("booking", bookingID).Msg("payment already paid, skipping")

		return true, nil
	}

	if !payment.Status.IsPayable() {
		log.Warn().Str("booking", bookingID).Str("status", payment.Status.String()).Msg("payment cannot be marked paid")

		return true, nil
	}

	fields := shared.TransformFields(settlement, shared.GetActor(ctx))
	fields[model.FieldStatus] = model.StatusPaid

	affected, err := s.repo.UpdateCount(ctx, fields, payableFilter(bookingID))
	if err != nil {
		log.Error().Err(err).Str("booking", bookingID).Msg("failed to mark payment paid")

		return true, fmt.Errorf("failed to mark payment paid: %w", err)
	}

	if affected == 0 {
		log.Info().Str("booking", bookingID).Msg("payment settled concurrently, skipping")

		return true, nil
	}

	log.Info().Str("booking", bookingID).Msg("payment marked paid")

	return true, nil
}

// markFailed records a failed attempt. Paid and Refunded payments are never downgraded by a
// late failure event.
func (s *serviceImpl) markFailed(ctx context.Context, bookingID string) (bool, error) {
	payment, err := s.getByBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}

	if payment.ID == constant.Empty {
		return false, nil
	}

	fields := shared.TransformFields(struct {
		Status model.Status `db:"status"`
	}{model.StatusFailed}, shared.GetActor(ctx))

	affected, err := s.repo.UpdateCount(ctx, fields, payableFilter(bookingID))
	if err != nil {
		log.Error().Err(err).Str("booking", bookingID).Msg("failed to mark payment failed")

		return true, fmt.Errorf("failed to mark payment failed: %w", err)
	}

	if affected == 0 {
		log.Info().Str("booking", bookingID).Str("status", payment.Status.String()).Msg("failure event for settled payment, skipping")
	}

	return true, nil
}

// upsertPending restarts the booking's payment attempt, creating the row on first use.
func (s *serviceImpl) upsertPending(ctx context.Context, pending dto.PendingPayment) (model.Payment, error) {
	actor := shared.GetActor(ctx)

	existing, err := s.getByBooking(ctx, pending.BookingID)
	if err != nil {
		return existing, err
	}

	if existing.ID == constant.Empty {
		err = s.repo.Insert(ctx, pending.ToModel(actor))
		if err == nil {
			return s.getBy(ctx, model.FieldBookingID, pending.BookingID)
		}

		// another attempt created the row first
		if !failure.IsCode(err, http.StatusConflict) {
			log.Error().Err(err).Msg("failed to create payment")

			return existing, fmt.Errorf("failed to create payment: %w", err)
		}
	}

	filter := gDto.NewFilterGroup(
		gDto.Filter{Field: model.FieldBookingID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: pending.BookingID},
		gDto.Filter{ArgName: "unpaid", Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorNotEq, Value: model.StatusPaid},
	)

	affected, err := s.repo.UpdateCount(ctx, shared.TransformFields(pending.Fields(), actor), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to update payment")

		return existing, fmt.Errorf("failed to update payment: %w", err)
	}

	if affected == 0 {
		return existing, failure.Conflict("This booking has already been paid")
	}

	return s.getBy(ctx, model.FieldBookingID, pending.BookingID)
}

// payableBooking checks the shared preconditions of both initiation modes.
func (s *serviceImpl) payableBooking(ctx context.Context, bookingID string) (bookingModel.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return booking, err
	}

	if booking.TouristID != shared.GetUserID(ctx) {
		return booking, failure.Forbidden("You can only pay for your own bookings")
	}

	if booking.Status != bookingModel.StatusConfirmed {
		return booking, failure.BadRequestFromString("Booking must be confirmed before payment")
	}

	if booking.PaymentStatus != nil && model.Status(*booking.PaymentStatus) == model.StatusPaid {
		return booking, failure.Conflict("This booking has already been paid")
	}

	return booking, nil
}

func (s *serviceImpl) visible(ctx context.Context, field, value string) (res dto.PaymentResponse, err error) {
	payment, err := s.getBy(ctx, field, value)
	if err != nil {
		return res, err
	}

	userID := shared.GetUserID(ctx)
	if !shared.IsAdmin(ctx) && payment.UserID != userID && payment.GuideID != userID {
		return res, failure.Forbidden("You do not have access to this payment")
	}

	res.FromModel(payment)

	return res, nil
}

func (s *serviceImpl) getBooking(ctx context.Context, id string) (bookingModel.Booking, error) {
	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(id, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("Booking not found")
	}

	return booking, nil
}

// getByBooking returns the zero payment when the booking has none.
func (s *serviceImpl) getByBooking(ctx context.Context, bookingID string) (model.Payment, error) {
	payment, err := s.repo.Get(ctx, shared.FilterByID(bookingID, model.FieldBookingID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment")

		return payment, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

func (s *serviceImpl) getBy(ctx context.Context, field, value string) (model.Payment, error) {
	payment, err := s.repo.Get(ctx, shared.FilterByID(value, field, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment")

		return payment, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return payment, failure.NotFound("Payment not found")
	}

	return payment, nil
}

func (s *serviceImpl) metadata(ctx context.Context, booking bookingModel.Booking) map[string]string {
	return map[string]string{
		stripe.MetadataBookingID: booking.ID,
		stripe.MetadataUserID:    shared.GetUserID(ctx),
		stripe.MetadataListingID: booking.ListingID,
	}
}

func (s *serviceImpl) returnURL(bookingID, outcome string) string {
	return fmt.Sprintf("%s/dashboard/bookings/%s?payment=%s", s.cfg.App.FrontendURL, bookingID, outcome)
}

func payableFilter(bookingID string) gDto.FilterGroup {
	payable := make([]string, 0, len(model.PayableStatuses))
	for _, status := range model.PayableStatuses {
		payable = append(payable, status.String())
	}

	return gDto.NewFilterGroup(
		gDto.Filter{Field: model.FieldBookingID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: bookingID},
		gDto.Filter{Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorIn, Value: payable},
	)
}

func withStatus(scope gDto.FilterGroup, status model.Status) gDto.FilterGroup {
	filter := gDto.NewFilterGroup(slices.Clone(scope.Filters)...)
	filter.Add(gDto.Filter{Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: status})

	return filter
}
