package model

import (
	"localguide/shared/model"
	"time"
)

const (
	TableName         = "payments"
	EntityName        = "payment"
	BookingTableAlias = "bookings"
	ListingTableAlias = "listings"
	TouristTableAlias = "tourists"

	FieldID              = "id"
	FieldBookingID       = "booking_id"
	FieldUserID          = "user_id"
	FieldAmount          = "amount"
	FieldCurrency        = "currency"
	FieldStatus          = "status"
	FieldStripePaymentID = "stripe_payment_id"
	FieldStripeSessionID = "stripe_session_id"
	FieldPaymentMethod   = "payment_method"
	FieldGuideID         = "guide_id"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

// PayableStatuses are the states a Paid transition may start from.
var PayableStatuses = []Status{StatusPending, StatusFailed}

type Payment struct {
	ID              string  `db:"id"`
	BookingID       string  `db:"booking_id"`
	UserID          string  `db:"user_id"`
	Amount          float64 `db:"amount"`
	Currency        string  `db:"currency"`
	Status          Status  `db:"status"`
	StripePaymentID string  `db:"stripe_payment_id"`
	StripeSessionID string  `db:"stripe_session_id"`
	PaymentMethod   string  `db:"payment_method"`
	model.Metadata

	GuideID       string    `column:"guide_id"     db:"guide_id"       table:"bookings"`
	BookingDate   time.Time `column:"booking_date" db:"booking_date"   table:"bookings"`
	BookingStatus string    `column:"status"       db:"booking_status" table:"bookings"`
	ListingID     string    `column:"listing_id"   db:"listing_id"     table:"bookings"`
	ListingTitle  string    `column:"title"        db:"listing_title"  table:"listings"`
	TouristName   string    `column:"name"         db:"tourist_name"   table:"tourists"`
	TouristEmail  string    `column:"email"        db:"tourist_email"  table:"tourists"`
}

func (Payment) GetJoinQuery() string {
	return `JOIN bookings ON bookings.id = payments.booking_id
	JOIN listings ON listings.id = bookings.listing_id
	JOIN users tourists ON tourists.id = payments.user_id`
}

// IsPayable reports whether a Paid transition may start from the current status.
func (s Status) IsPayable() bool {
	return s == StatusPending || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}
