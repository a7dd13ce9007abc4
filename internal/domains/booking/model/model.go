package model

import (
	"localguide/shared/model"
	"slices"
	"time"
)

const (
	TableName         = "bookings"
	EntityName        = "booking"
	ListingTableAlias = "listings"
	TouristTableAlias = "tourists"
	GuideTableAlias   = "guides"
	PaymentTableAlias = "payments"
	ReviewTableAlias  = "reviews"

	FieldID              = "id"
	FieldTouristID       = "tourist_id"
	FieldGuideID         = "guide_id"
	FieldListingID       = "listing_id"
	FieldBookingDate     = "booking_date"
	FieldStartTime       = "start_time"
	FieldEndTime         = "end_time"
	FieldNumberOfPeople  = "number_of_people"
	FieldTotalAmount     = "total_amount"
	FieldStatus          = "status"
	FieldSpecialRequests = "special_requests"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether next is a legal edge from s. Completed and Cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// IsActive reports whether the booking still holds the listing.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) String() string {
	return string(s)
}

type Booking struct {
	ID              string    `db:"id"`
	TouristID       string    `db:"tourist_id"`
	GuideID         string    `db:"guide_id"`
	ListingID       string    `db:"listing_id"`
	BookingDate     time.Time `db:"booking_date"`
	StartTime       string    `db:"start_time"`
	EndTime         string    `db:"end_time"`
	NumberOfPeople  int       `db:"number_of_people"`
	TotalAmount     float64   `db:"total_amount"`
	Status          Status    `db:"status"`
	SpecialRequests string    `db:"special_requests"`
	model.Metadata

	ListingTitle  string  `column:"title"  db:"listing_title"  table:"listings"`
	ListingCity   string  `column:"city"   db:"listing_city"   table:"listings"`
	TouristName   string  `column:"name"   db:"tourist_name"   table:"tourists"`
	TouristEmail  string  `column:"email"  db:"tourist_email"  table:"tourists"`
	GuideName     string  `column:"name"   db:"guide_name"     table:"guides"`
	GuideEmail    string  `column:"email"  db:"guide_email"    table:"guides"`
	PaymentStatus *string `column:"status" db:"payment_status" table:"payments"`
	ReviewID      *string `column:"id"     db:"review_id"      table:"reviews"`
}

func (Booking) GetJoinQuery() string {
	return `JOIN listings ON listings.id = bookings.listing_id
	JOIN users tourists ON tourists.id = bookings.tourist_id
	JOIN users guides ON guides.id = bookings.guide_id
	LEFT JOIN payments ON payments.booking_id = bookings.id
	LEFT JOIN reviews ON reviews.booking_id = bookings.id`
}

// EndTime returns start + duration hours on a 24h clock.
func EndTime(start string, durationHours int) (string, error) {
	parsed, err := time.Parse("15:04", start)
	if err != nil {
		return "", err
	}

	return parsed.Add(time.Duration(durationHours) * time.Hour).Format("15:04"), nil
}
