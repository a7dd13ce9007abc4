package model

import (
	"localguide/shared/model"
)

const (
	TableName         = "reviews"
	EntityName        = "review"
	TouristTableAlias = "tourists"
	GuideTableAlias   = "guides"
	ListingTableAlias = "listings"

	FieldID        = "id"
	FieldBookingID = "booking_id"
	FieldTouristID = "tourist_id"
	FieldGuideID   = "guide_id"
	FieldListingID = "listing_id"
	FieldRating    = "rating"
	FieldComment   = "comment"

	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string `db:"id"`
	BookingID string `db:"booking_id"`
	TouristID string `db:"tourist_id"`
	GuideID   string `db:"guide_id"`
	ListingID string `db:"listing_id"`
	Rating    int    `db:"rating"`
	Comment   string `db:"comment"`
	model.Metadata

	TouristName       string `column:"name"        db:"tourist_name"        table:"tourists"`
	TouristProfilePic string `column:"profile_pic" db:"tourist_profile_pic" table:"tourists"`
	GuideName         string `column:"name"        db:"guide_name"          table:"guides"`
	GuideProfilePic   string `column:"profile_pic" db:"guide_profile_pic"   table:"guides"`
	ListingTitle      string `column:"title"       db:"listing_title"       table:"listings"`
}

func (Review) GetJoinQuery() string {
	return `JOIN users tourists ON tourists.id = reviews.tourist_id
	JOIN users guides ON guides.id = reviews.guide_id
	JOIN listings ON listings.id = reviews.listing_id`
}
