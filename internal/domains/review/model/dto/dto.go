package dto

import (
	"localguide/internal/domains/review/model"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	gModel "localguide/shared/model"
	"localguide/shared/timezone"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Rating    int    `json:"rating"     validate:"required,min=1,max=5"`
	Comment   string `json:"comment"    validate:"required,min=10,max=1000"`
}

// ToModel copies guide and listing from the reviewed booking so they cannot be forged by the author.
func (r *CreateReviewRequest) ToModel(touristID, guideID, listingID, actor string) model.Review {
	return model.Review{
		ID:        uuid.NewString(),
		BookingID: r.BookingID,
		TouristID: touristID,
		GuideID:   guideID,
		ListingID: listingID,
		Rating:    r.Rating,
		Comment:   strings.TrimSpace(r.Comment),
		Metadata:  gModel.NewMetadata(timezone.Now(), actor),
	}
}

type UpdateReviewRequest struct {
	Rating  *int    `db:"rating"  json:"rating"  validate:"omitempty,min=1,max=5"`
	Comment *string `db:"comment" json:"comment" validate:"omitempty,min=10,max=1000"`
}

func (r *UpdateReviewRequest) IsEmpty() bool {
	return r.Rating == nil && r.Comment == nil
}

type ReviewResponse struct {
	ID                string `json:"id"`
	BookingID         string `json:"booking_id"`
	TouristID         string `json:"tourist_id"`
	GuideID           string `json:"guide_id"`
	ListingID         string `json:"listing_id"`
	Rating            int    `json:"rating"`
	Comment           string `json:"comment"`
	TouristName       string `json:"tourist_name"`
	TouristProfilePic string `json:"tourist_profile_pic"`
	GuideName         string `json:"guide_name"`
	GuideProfilePic   string `json:"guide_profile_pic"`
	ListingTitle      string `json:"listing_title"`
	gDto.Metadata
}

func (r *ReviewResponse) FromModel(m model.Review) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.TouristID = m.TouristID
	r.GuideID = m.GuideID
	r.ListingID = m.ListingID
	r.Rating = m.Rating
	r.Comment = m.Comment
	r.TouristName = m.TouristName
	r.TouristProfilePic = m.TouristProfilePic
	r.GuideName = m.GuideName
	r.GuideProfilePic = m.GuideProfilePic
	r.ListingTitle = m.ListingTitle
	r.Metadata.FromModel(m.Metadata)
}

type GetReviewsResponse struct {
	Reviews    []ReviewResponse `json:"reviews"`
	Pagination gDto.Pagination  `json:"pagination"`
}

func (r *GetReviewsResponse) FromModels(models []model.Review, total int, params gDto.QueryParams) {
	r.Pagination = gDto.NewPagination(total, params)

	r.Reviews = make([]ReviewResponse, len(models))
	for i, mod := range models {
		r.Reviews[i].FromModel(mod)
	}
}

// ListReviewsQuery lists reviews newest first.
type ListReviewsQuery struct {
	gDto.QueryParams
	GuideID   string
	ListingID string
	TouristID string
	Rating    int
}

func (q *ListReviewsQuery) FromRequest(r *http.Request) {
	q.QueryParams.FromRequest(r, true)
	q.SortBy = model.TableName + "." + constant.FieldCreatedAt
	q.SortDir = gDto.SortDirDesc

	query := r.URL.Query()
	q.GuideID = query.Get(model.FieldGuideID)
	q.ListingID = query.Get(model.FieldListingID)

	if rating, err := strconv.Atoi(query.Get(model.FieldRating)); err == nil && rating >= model.MinRating && rating <= model.MaxRating {
		q.Rating = rating
	}
}

func (q *ListReviewsQuery) Filter() gDto.FilterGroup {
	filter := gDto.NewFilterGroup()

	if q.GuideID != "" {
		filter.Add(gDto.Filter{Field: model.FieldGuideID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.GuideID})
	}

	if q.ListingID != "" {
		filter.Add(gDto.Filter{Field: model.FieldListingID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.ListingID})
	}

	if q.TouristID != "" {
		filter.Add(gDto.Filter{Field: model.FieldTouristID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.TouristID})
	}

	if q.Rating != 0 {
		filter.Add(gDto.Filter{Field: model.FieldRating, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.Rating})
	}

	return filter
}
