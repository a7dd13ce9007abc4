package stripe

//go:generate go run go.uber.org/mock/mockgen -source=./stripe.go -destination=./mocks/stripe_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"localguide/config"
	"localguide/infras/otel"
	"localguide/shared/constant"

	"github.com/rs/zerolog/log"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventCheckoutCompleted = "checkout.session.completed"
)

const (
	MetadataBookingID = "booking_id"
	MetadataUserID    = "user_id"
	MetadataListingID = "listing_id"
)

const (
	IntentStatusSucceeded = string(stripego.PaymentIntentStatusSucceeded)
	defaultPaymentMethod  = "card"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type IntentRequest struct {
	Amount       int64
	Currency     string
	ReceiptEmail string
	Metadata     map[string]string
}

type PaymentIntent struct {
	ID            string
	ClientSecret  string
	Status        string
	PaymentMethod string
	BookingID     string
}

type CheckoutRequest struct {
	Amount        int64
	Currency      string
	CustomerEmail string
	Name          string
	Description   string
	Images        []string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook event reduced to the fields reconciliation needs.
// BookingID is empty when the provider object carried no booking metadata.
type Event struct {
	ID              string
	Type            string
	BookingID       string
	PaymentIntentID string
	SessionID       string
	PaymentMethod   string
}

// Stripe is the payment gateway.
type Stripe interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	Refund(ctx context.Context, paymentIntentID string) error
	ConstructEvent(payload []byte, signature string) (Event, error)
}

type stripeImpl struct {
	client        *client.API
	webhookSecret string
	otel          otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Stripe {
	return &stripeImpl{
		client:        client.New(cfg.External.Stripe.SecretKey, nil),
		webhookSecret: cfg.External.Stripe.WebhookSecret,
		otel:          otl,
	}
}

func (s *stripeImpl) CreatePaymentIntent(ctx context.Context, req IntentRequest) (result PaymentIntent, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".CreatePaymentIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
	})

	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(req.Amount),
		Currency: stripego.String(req.Currency),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx

	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripego.String(req.ReceiptEmail)
	}

	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	intent, err := s.client.PaymentIntents.New(params)
	if err != nil {
		log.Error().Err(err).Msg("failed to create payment intent")

		return result, fmt.Errorf("failed to create payment intent: %w", providerError(err))
	}

	return toPaymentIntent(intent), nil
}

func (s *stripeImpl) GetPaymentIntent(ctx context.Context, id string) (result PaymentIntent, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".GetPaymentIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("payment_intent_id", id)

	params := &stripego.PaymentIntentParams{}
	params.Context = ctx

	intent, err := s.client.PaymentIntents.Get(id, params)
	if err != nil {
		log.Error().Err(err).Str("paymentIntentID", id).Msg("failed to retrieve payment intent")

		return result, fmt.Errorf("failed to retrieve payment intent: %w", providerError(err))
	}

	return toPaymentIntent(intent), nil
}

func (s *stripeImpl) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (result CheckoutSession, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".CreateCheckoutSession")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	productData := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripego.String(req.Name),
	}

	if req.Description != "" {
		productData.Description = stripego.String(req.Description)
	}

	if len(req.Images) > 0 {
		productData.Images = stripego.StringSlice(req.Images)
	}

	params := &stripego.CheckoutSessionParams{
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice([]string{defaultPaymentMethod}),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripego.String(req.Currency),
					ProductData: productData,
					UnitAmount:  stripego.Int64(req.Amount),
				},
				Quantity: stripego.Int64(1),
			},
		},
		// metadata on the intent too, so payment_intent.* events can be reconciled
		PaymentIntentData: &stripego.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		},
		SuccessURL: stripego.String(req.SuccessURL),
		CancelURL:  stripego.String(req.CancelURL),
	}
	params.Context = ctx

	if req.CustomerEmail != "" {
		params.CustomerEmail = stripego.String(req.CustomerEmail)
	}

	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		log.Error().Err(err).Msg("failed to create checkout session")

		return result, fmt.Errorf("failed to create checkout session: %w", providerError(err))
	}

	return CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (s *stripeImpl) Refund(ctx context.Context, paymentIntentID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".Refund")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("payment_intent_id", paymentIntentID)

	params := &stripego.RefundParams{
		PaymentIntent: stripego.String(paymentIntentID),
		Reason:        stripego.String(string(stripego.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx

	if _, err = s.client.Refunds.New(params); err != nil {
		log.Error().Err(err).Str("paymentIntentID", paymentIntentID).Msg("failed to create refund")

		return providerError(err)
	}

	return nil
}

// ConstructEvent verifies the signature before decoding anything from the payload.
func (s *stripeImpl) ConstructEvent(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	result := Event{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch result.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var intent stripego.PaymentIntent
		if err = json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return result, fmt.Errorf("failed to decode payment intent: %w", err)
		}

		result.BookingID = intent.Metadata[MetadataBookingID]
		result.PaymentIntentID = intent.ID
		result.PaymentMethod = paymentMethodOf(intent.PaymentMethodTypes, intent.PaymentMethod)
	case EventCheckoutCompleted:
		var session stripego.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &session); err != nil {
			return result, fmt.Errorf("failed to decode checkout session: %w", err)
		}

		result.BookingID = session.Metadata[MetadataBookingID]
		result.SessionID = session.ID
		result.PaymentMethod = paymentMethodOf(session.PaymentMethodTypes, nil)

		if session.PaymentIntent != nil {
			result.PaymentIntentID = session.PaymentIntent.ID
		}
	}

	return result, nil
}

func toPaymentIntent(intent *stripego.PaymentIntent) PaymentIntent {
	return PaymentIntent{
		ID:            intent.ID,
		ClientSecret:  intent.ClientSecret,
		Status:        string(intent.Status),
		PaymentMethod: paymentMethodOf(intent.PaymentMethodTypes, intent.PaymentMethod),
		BookingID:     intent.Metadata[MetadataBookingID],
	}
}

func paymentMethodOf(types []string, method *stripego.PaymentMethod) string {
	if method != nil && method.Type != "" {
		return string(method.Type)
	}

	if len(types) > 0 {
		return types[0]
	}

	return defaultPaymentMethod
}

// providerError surfaces the provider's human readable message instead of its raw JSON body.
func providerError(err error) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return errors.New(stripeErr.Msg)
	}

	return err
}
