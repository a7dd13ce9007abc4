package model

import (
	"localguide/shared/model"

	"github.com/lib/pq"
)

const (
	TableName        = "listings"
	EntityName       = "listing"
	GuideTableAlias  = "guides"
	RatingTableAlias = "rating_stats"

	FieldID            = "id"
	FieldGuideID       = "guide_id"
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldItinerary     = "itinerary"
	FieldTourFee       = "tour_fee"
	FieldDuration      = "duration"
	FieldMeetingPoint  = "meeting_point"
	FieldMaxGroupSize  = "max_group_size"
	FieldImages        = "images"
	FieldCity          = "city"
	FieldCountry       = "country"
	FieldCategory      = "category"
	FieldIsActive      = "is_active"
	FieldAverageRating = "average_rating"
	FieldReviewCount   = "review_count"
)

type Listing struct {
	ID           string         `db:"id"`
	GuideID      string         `db:"guide_id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Itinerary    string         `db:"itinerary"`
	TourFee      float64        `db:"tour_fee"`
	Duration     int            `db:"duration"`
	MeetingPoint string         `db:"meeting_point"`
	MaxGroupSize int            `db:"max_group_size"`
	Images       pq.StringArray `db:"images"`
	City         string         `db:"city"`
	Country      string         `db:"country"`
	Category     pq.StringArray `db:"category"`
	IsActive     bool           `db:"is_active"`
	model.Metadata

	GuideName       string   `column:"name"           db:"guide_name"        table:"guides"`
	GuideProfilePic string   `column:"profile_pic"    db:"guide_profile_pic" table:"guides"`
	AverageRating   *float64 `column:"average_rating" db:"average_rating"    table:"rating_stats"`
	ReviewCount     *int     `column:"review_count"   db:"review_count"      table:"rating_stats"`
}

func (Listing) GetJoinQuery() string {
	return `JOIN users guides ON guides.id = listings.guide_id
	LEFT JOIN (
		SELECT listing_id, AVG(rating)::float8 AS average_rating, COUNT(id) AS review_count
		FROM reviews GROUP BY listing_id
	) rating_stats ON rating_stats.listing_id = listings.id`
}

// Rating returns the average review rating, zero when the listing has none.
func (l Listing) Rating() float64 {
	if l.AverageRating == nil {
		return 0
	}

	return *l.AverageRating
}

func (l Listing) Reviews() int {
	if l.ReviewCount == nil {
		return 0
	}

	return *l.ReviewCount
}

// FirstImage is used as the checkout product image.
func (l Listing) FirstImage() string {
	if len(l.Images) == 0 {
		return ""
	}

	return l.Images[0]
}
