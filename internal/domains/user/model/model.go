package model

import (
	"localguide/shared/model"

	"github.com/lib/pq"
)

const (
	TableName        = "users"
	EntityName       = "user"
	RatingTableAlias = "guide_ratings"

	FieldID                = "id"
	FieldEmail             = "email"
	FieldPassword          = "password"
	FieldName              = "name"
	FieldRole              = "role"
	FieldPhone             = "phone"
	FieldProfilePic        = "profile_pic"
	FieldBio               = "bio"
	FieldLanguages         = "languages"
	FieldExpertise         = "expertise"
	FieldDailyRate         = "daily_rate"
	FieldCity              = "city"
	FieldCountry           = "country"
	FieldTravelPreferences = "travel_preferences"
	FieldIsVerified        = "is_verified"
	FieldIsActive          = "is_active"
	FieldAverageRating     = "average_rating"
	FieldReviewCount       = "review_count"
)

type User struct {
	ID                string         `db:"id"`
	Email             string         `db:"email"`
	Password          string         `db:"password"`
	Name              string         `db:"name"`
	Role              string         `db:"role"`
	Phone             string         `db:"phone"`
	ProfilePic        string         `db:"profile_pic"`
	Bio               string         `db:"bio"`
	Languages         pq.StringArray `db:"languages"`
	Expertise         pq.StringArray `db:"expertise"`
	DailyRate         float64        `db:"daily_rate"`
	City              string         `db:"city"`
	Country           string         `db:"country"`
	TravelPreferences pq.StringArray `db:"travel_preferences"`
	IsVerified        bool           `db:"is_verified"`
	IsActive          bool           `db:"is_active"`
	model.Metadata
}

// Profile is a user read together with the ratings they received as a guide.
type Profile struct {
	User
	AverageRating *float64 `column:"average_rating" db:"average_rating" table:"guide_ratings"`
	ReviewCount   *int     `column:"review_count"   db:"review_count"   table:"guide_ratings"`
}

func (Profile) GetJoinQuery() string {
	return `LEFT JOIN (
		SELECT guide_id, AVG(rating)::float8 AS average_rating, COUNT(id) AS review_count
		FROM reviews GROUP BY guide_id
	) guide_ratings ON guide_ratings.guide_id = users.id`
}

// Rating returns the average rating, zero when the guide has no reviews yet.
func (p Profile) Rating() float64 {
	if p.AverageRating == nil {
		return 0
	}

	return *p.AverageRating
}

func (p Profile) Reviews() int {
	if p.ReviewCount == nil {
		return 0
	}

	return *p.ReviewCount
}
