package dto

import (
	"localguide/internal/domains/listing/model"
	reviewModel "localguide/internal/domains/review/model"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	gModel "localguide/shared/model"
	"localguide/shared/timezone"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	SortNewest = "newest"
	SortPrice  = "price"
	SortRating = "rating"
)

var sortColumns = map[string]string{
	SortNewest: model.TableName + "." + constant.FieldCreatedAt,
	SortPrice:  model.TableName + "." + model.FieldTourFee,
	SortRating: "COALESCE(" + model.RatingTableAlias + "." + model.FieldAverageRating + ", 0)",
}

var sortDirections = map[string]string{
	SortNewest: gDto.SortDirDesc,
	SortPrice:  gDto.SortDirAsc,
	SortRating: gDto.SortDirDesc,
}

type CreateListingRequest struct {
	Title        string   `json:"title"          validate:"required,min=5,max=200"`
	Description  string   `json:"description"    validate:"required,min=20,max=2000"`
	Itinerary    string   `json:"itinerary"      validate:"omitempty,max=2000"`
	TourFee      float64  `json:"tour_fee"       validate:"min=0"`
	Duration     int      `json:"duration"       validate:"required,min=1,max=24"`
	MeetingPoint string   `json:"meeting_point"  validate:"required,max=300"`
	MaxGroupSize int      `json:"max_group_size" validate:"required,min=1,max=50"`
	City         string   `json:"city"           validate:"required,max=100"`
	Country      string   `json:"country"        validate:"required,max=100"`
	Category     []string `json:"category"       validate:"required,min=1,dive,required"`
	Images       []string `json:"images"         validate:"omitempty,dive,url"`
}

func (r *CreateListingRequest) ToModel(guideID, actor string) model.Listing {
	images := r.Images
	if images == nil {
		images = []string{}
	}

	return model.Listing{
		ID:           uuid.NewString(),
		GuideID:      guideID,
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(r.Description),
		Itinerary:    r.Itinerary,
		TourFee:      r.TourFee,
		Duration:     r.Duration,
		MeetingPoint: r.MeetingPoint,
		MaxGroupSize: r.MaxGroupSize,
		Images:       images,
		City:         strings.TrimSpace(r.City),
		Country:      strings.TrimSpace(r.Country),
		Category:     r.Category,
		IsActive:     true,
		Metadata:     gModel.NewMetadata(timezone.Now(), actor),
	}
}

type UpdateListingRequest struct {
	Title        *string         `db:"title"          json:"title"          validate:"omitempty,min=5,max=200"`
	Description  *string         `db:"description"    json:"description"    validate:"omitempty,min=20,max=2000"`
	Itinerary    *string         `db:"itinerary"      json:"itinerary"      validate:"omitempty,max=2000"`
	TourFee      *float64        `db:"tour_fee"       json:"tour_fee"       validate:"omitempty,min=0"`
	Duration     *int            `db:"duration"       json:"duration"       validate:"omitempty,min=1,max=24"`
	MeetingPoint *string         `db:"meeting_point"  json:"meeting_point"  validate:"omitempty,max=300"`
	MaxGroupSize *int            `db:"max_group_size" json:"max_group_size" validate:"omitempty,min=1,max=50"`
	City         *string         `db:"city"           json:"city"           validate:"omitempty,max=100"`
	Country      *string         `db:"country"        json:"country"        validate:"omitempty,max=100"`
	Category     *pq.StringArray `db:"category"       json:"category"       validate:"omitempty,min=1,dive,required"`
	Images       *pq.StringArray `db:"images"         json:"images"         validate:"omitempty,dive,url"`
	IsActive     *bool           `db:"is_active"      json:"is_active"`
}

type GuideSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ProfilePic    string   `json:"profile_pic"`
	AverageRating *float64 `json:"average_rating,omitempty"`
}

type ReviewSummary struct {
	ID                string `json:"id"`
	Rating            int    `json:"rating"`
	Comment           string `json:"comment"`
	TouristID         string `json:"tourist_id"`
	TouristName       string `json:"tourist_name"`
	TouristProfilePic string `json:"tourist_profile_pic"`
	CreatedAt         string `json:"created_at"`
}

type ListingResponse struct {
	ID            string          `json:"id"`
	GuideID       string          `json:"guide_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Itinerary     string          `json:"itinerary"`
	TourFee       float64         `json:"tour_fee"`
	Duration      int             `json:"duration"`
	MeetingPoint  string          `json:"meeting_point"`
	MaxGroupSize  int             `json:"max_group_size"`
	Images        []string        `json:"images"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	Category      []string        `json:"category"`
	IsActive      bool            `json:"is_active"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
	Guide         GuideSummary    `json:"guide"`
	Reviews       []ReviewSummary `json:"reviews,omitempty"`
	gDto.Metadata
}

func (r *ListingResponse) FromModel(m model.Listing) {
	r.ID = m.ID
	r.GuideID = m.GuideID
	r.Title = m.Title
	r.Description = m.Description
	r.Itinerary = m.Itinerary
	r.TourFee = m.TourFee
	r.Duration = m.Duration
	r.MeetingPoint = m.MeetingPoint
	r.MaxGroupSize = m.MaxGroupSize
	r.Images = nonNil(m.Images)
	r.City = m.City
	r.Country = m.Country
	r.Category = nonNil(m.Category)
	r.IsActive = m.IsActive
	r.AverageRating = m.Rating()
	r.ReviewCount = m.Reviews()
	r.Guide = GuideSummary{ID: m.GuideID, Name: m.GuideName, ProfilePic: m.GuideProfilePic}
	r.Metadata.FromModel(m.Metadata)
}

// AttachDetail adds the guide's overall rating and the most recent reviews of the listing.
func (r *ListingResponse) AttachDetail(guideRating float64, reviews []reviewModel.Review) {
	r.Guide.AverageRating = &guideRating

	r.Reviews = make([]ReviewSummary, len(reviews))
	for i, review := range reviews {
		r.Reviews[i] = ReviewSummary{
			ID:                review.ID,
			Rating:            review.Rating,
			Comment:           review.Comment,
			TouristID:         review.TouristID,
			TouristName:       review.TouristName,
			TouristProfilePic: review.TouristProfilePic,
			CreatedAt:         timezone.Format(review.CreatedAt, constant.DateFormat),
		}
	}
}

type GetListingsResponse struct {
	Listings   []ListingResponse `json:"listings"`
	Pagination gDto.Pagination   `json:"pagination"`
}

func (r *GetListingsResponse) FromModels(models []model.Listing, total int, params gDto.QueryParams) {
	r.Pagination = gDto.NewPagination(total, params)

	r.Listings = make([]ListingResponse, len(models))
	for i, mod := range models {
		r.Listings[i].FromModel(mod)
	}
}

// ListListingsQuery is the public catalog search. Only active listings are returned.
type ListListingsQuery struct {
	gDto.QueryParams
	City     string
	Country  string
	Category string
	GuideID  string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Duration *int
}

func (q *ListListingsQuery) FromRequest(r *http.Request) {
	q.QueryParams.FromRequest(r, true)

	query := r.URL.Query()
	q.City = query.Get(model.FieldCity)
	q.Country = query.Get(model.FieldCountry)
	q.Category = query.Get(model.FieldCategory)
	q.GuideID = query.Get(model.FieldGuideID)
	q.Search = query.Get("search")
	q.MinPrice = shared.ConvertStringToFloat(query.Get("min_price"))
	q.MaxPrice = shared.ConvertStringToFloat(query.Get("max_price"))

	if duration, err := strconv.Atoi(query.Get(model.FieldDuration)); err == nil && duration > 0 {
		q.Duration = &duration
	}

	q.ApplySort()
}

// ApplySort resolves sort_by (newest, price, rating) to its column and fixed direction.
func (q *ListListingsQuery) ApplySort() {
	key := q.SortBy
	if _, ok := sortColumns[key]; !ok {
		key = SortNewest
	}

	q.SortBy = sortColumns[key]
	q.SortDir = sortDirections[key]
}

func (q *ListListingsQuery) Filter() gDto.FilterGroup {
	filter := gDto.NewFilterGroup(
		gDto.Filter{Field: model.FieldIsActive, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: true},
	)

	if q.City != "" {
		filter.Add(gDto.Filter{Field: model.FieldCity, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.City})
	}

	if q.Country != "" {
		filter.Add(gDto.Filter{Field: model.FieldCountry, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Country})
	}

	if q.Category != "" {
		filter.Add(gDto.Filter{Field: model.FieldCategory, Table: model.TableName, Operator: gDto.FilterOperatorAny, Value: q.Category})
	}

	if q.GuideID != "" {
		filter.Add(gDto.Filter{Field: model.FieldGuideID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.GuideID})
	}

	if q.MinPrice != nil {
		filter.Add(gDto.Filter{ArgName: "min_price", Field: model.FieldTourFee, Table: model.TableName, Operator: gDto.FilterOperatorGreaterEq, Value: *q.MinPrice})
	}

	if q.MaxPrice != nil {
		filter.Add(gDto.Filter{ArgName: "max_price", Field: model.FieldTourFee, Table: model.TableName, Operator: gDto.FilterOperatorLessEq, Value: *q.MaxPrice})
	}

	if q.Duration != nil {
		filter.Add(gDto.Filter{Field: model.FieldDuration, Table: model.TableName, Operator: gDto.FilterOperatorLessEq, Value: *q.Duration})
	}

	if q.Search != "" {
		filter.Add(gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "search_title", Field: model.FieldTitle, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Search},
				gDto.Filter{ArgName: "search_description", Field: model.FieldDescription, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Search},
			},
		})
	}

	return filter
}

func nonNil(values pq.StringArray) []string {
	if values == nil {
		return []string{}
	}

	return values
}
