package dto

import (
	"localguide/internal/domains/payment/model"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	gModel "localguide/shared/model"
	"localguide/shared/timezone"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type CreatePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type ConfirmPaymentRequest struct {
	BookingID       string `json:"booking_id"        validate:"required,uuid"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type RefundPaymentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// PendingPayment is the row written when a payment attempt starts. Exactly one of the
// provider ids is set depending on the initiation mode.
type PendingPayment struct {
	BookingID       string
	UserID          string
	Amount          float64
	Currency        string
	StripePaymentID string
	StripeSessionID string
}

func (p PendingPayment) ToModel(actor string) model.Payment {
	return model.Payment{
		ID:              uuid.NewString(),
		BookingID:       p.BookingID,
		UserID:          p.UserID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          model.StatusPending,
		StripePaymentID: p.StripePaymentID,
		StripeSessionID: p.StripeSessionID,
		Metadata:        gModel.NewMetadata(timezone.Now(), actor),
	}
}

// Fields are the columns reset when an existing attempt is restarted.
func (p PendingPayment) Fields() any {
	return struct {
		Amount          float64      `db:"amount"`
		Currency        string       `db:"currency"`
		Status          model.Status `db:"status"`
		StripePaymentID string       `db:"stripe_payment_id"`
		StripeSessionID string       `db:"stripe_session_id"`
	}{p.Amount, p.Currency, model.StatusPending, p.StripePaymentID, p.StripeSessionID}
}

// Settlement carries the provider ids recorded when a payment becomes Paid.
type Settlement struct {
	StripePaymentID string `db:"stripe_payment_id"`
	StripeSessionID string `db:"stripe_session_id"`
	PaymentMethod   string `db:"payment_method"`
}

type PaymentResponse struct {
	ID              string  `json:"id"`
	BookingID       string  `json:"booking_id"`
	UserID          string  `json:"user_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	StripePaymentID string  `json:"stripe_payment_id,omitempty"`
	StripeSessionID string  `json:"stripe_session_id,omitempty"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	GuideID         string  `json:"guide_id"`
	ListingID       string  `json:"listing_id"`
	ListingTitle    string  `json:"listing_title"`
	TouristName     string  `json:"tourist_name"`
	BookingDate     string  `json:"booking_date"`
	BookingStatus   string  `json:"booking_status"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(m model.Payment) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.UserID = m.UserID
	r.Amount = m.Amount
	r.Currency = m.Currency
	r.Status = m.Status.String()
	r.StripePaymentID = m.StripePaymentID
	r.StripeSessionID = m.StripeSessionID
	r.PaymentMethod = m.PaymentMethod
	r.GuideID = m.GuideID
	r.ListingID = m.ListingID
	r.ListingTitle = m.ListingTitle
	r.TouristName = m.TouristName
	r.BookingStatus = m.BookingStatus
	r.Metadata.FromModel(m.Metadata)

	if !m.BookingDate.IsZero() {
		r.BookingDate = m.BookingDate.Format(constant.DateOnlyFormat)
	}
}

type GetPaymentsResponse struct {
	Payments   []PaymentResponse `json:"payments"`
	Pagination gDto.Pagination   `json:"pagination"`
}

func (r *GetPaymentsResponse) FromModels(models []model.Payment, total int, params gDto.QueryParams) {
	r.Pagination = gDto.NewPagination(total, params)

	r.Payments = make([]PaymentResponse, len(models))
	for i, mod := range models {
		r.Payments[i].FromModel(mod)
	}
}

type PaymentIntentResponse struct {
	ClientSecret    string          `json:"client_secret"`
	PaymentIntentID string          `json:"payment_intent_id"`
	Amount          float64         `json:"amount"`
	Payment         PaymentResponse `json:"payment"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type StatsResponse struct {
	Total        int     `json:"total"`
	Paid         int     `json:"paid"`
	Pending      int     `json:"pending"`
	Refunded     int     `json:"refunded"`
	Failed       int     `json:"failed"`
	TotalRevenue float64 `json:"total_revenue"`
}

// ListPaymentsQuery lists payments newest first, optionally by status.
type ListPaymentsQuery struct {
	gDto.QueryParams
	Status string
}

func (q *ListPaymentsQuery) FromRequest(r *http.Request) {
	q.QueryParams.FromRequest(r, true)
	q.SortBy = model.TableName + "." + constant.FieldCreatedAt
	q.SortDir = gDto.SortDirDesc

	switch status := model.Status(strings.ToUpper(r.URL.Query().Get(model.FieldStatus))); status {
	case model.StatusPending, model.StatusPaid, model.StatusFailed, model.StatusRefunded:
		q.Status = status.String()
	}
}

func (q *ListPaymentsQuery) Filter(userID, role string) gDto.FilterGroup {
	filter := ScopeFilter(userID, role)

	if q.Status != "" {
		filter.Add(gDto.Filter{Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.Status})
	}

	return filter
}

// ScopeFilter limits tourists to what they paid and guides to payments for their tours.
func ScopeFilter(userID, role string) gDto.FilterGroup {
	filter := gDto.NewFilterGroup()

	switch role {
	case constant.RoleTourist:
		filter.Add(gDto.Filter{Field: model.FieldUserID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: userID})
	case constant.RoleGuide:
		filter.Add(gDto.Filter{ArgName: "scope_guide_id", Field: model.FieldGuideID, Table: model.BookingTableAlias, Operator: gDto.FilterOperatorEq, Value: userID})
	}

	return filter
}
