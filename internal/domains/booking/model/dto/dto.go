package dto

import (
	"localguide/internal/domains/booking/model"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	gModel "localguide/shared/model"
	"localguide/shared/timezone"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultNumberOfPeople = 1

	SortCreatedAt   = "createdAt"
	SortBookingDate = "bookingDate"
	SortTotalAmount = "totalAmount"
)

var sortColumns = map[string]string{
	SortCreatedAt:   model.TableName + "." + constant.FieldCreatedAt,
	SortBookingDate: model.TableName + "." + model.FieldBookingDate,
	SortTotalAmount: model.TableName + "." + model.FieldTotalAmount,
}

type CreateBookingRequest struct {
	ListingID       string `json:"listing_id"       validate:"required,uuid"`
	BookingDate     string `json:"booking_date"     validate:"required,futuredate"`
	StartTime       string `json:"start_time"       validate:"required,hhmm"`
	NumberOfPeople  int    `json:"number_of_people" validate:"omitempty,min=1,max=50"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=500"`
}

// Headcount applies the default of one person.
func (r *CreateBookingRequest) Headcount() int {
	if r.NumberOfPeople == 0 {
		return DefaultNumberOfPeople
	}

	return r.NumberOfPeople
}

// ToModel builds a Pending booking. Total is fixed at creation from the listing fee.
func (r *CreateBookingRequest) ToModel(touristID, guideID string, tourFee float64, endTime, actor string) (model.Booking, error) {
	date, err := timezone.Parse(constant.DateOnlyFormat, r.BookingDate)
	if err != nil {
		return model.Booking{}, err
	}

	headcount := r.Headcount()

	return model.Booking{
		ID:              uuid.NewString(),
		TouristID:       touristID,
		GuideID:         guideID,
		ListingID:       r.ListingID,
		BookingDate:     date,
		StartTime:       r.StartTime,
		EndTime:         endTime,
		NumberOfPeople:  headcount,
		TotalAmount:     tourFee * float64(headcount),
		Status:          model.StatusPending,
		SpecialRequests: strings.TrimSpace(r.SpecialRequests),
		Metadata:        gModel.NewMetadata(timezone.Now(), actor),
	}, nil
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED CANCELLED"`
}

type BookingResponse struct {
	ID              string  `json:"id"`
	TouristID       string  `json:"tourist_id"`
	GuideID         string  `json:"guide_id"`
	ListingID       string  `json:"listing_id"`
	BookingDate     string  `json:"booking_date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	NumberOfPeople  int     `json:"number_of_people"`
	TotalAmount     float64 `json:"total_amount"`
	Status          string  `json:"status"`
	SpecialRequests string  `json:"special_requests"`
	ListingTitle    string  `json:"listing_title"`
	ListingCity     string  `json:"listing_city"`
	TouristName     string  `json:"tourist_name"`
	TouristEmail    string  `json:"tourist_email"`
	GuideName       string  `json:"guide_name"`
	GuideEmail      string  `json:"guide_email"`
	PaymentStatus   *string `json:"payment_status"`
	Reviewed        bool    `json:"reviewed"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.TouristID = m.TouristID
	r.GuideID = m.GuideID
	r.ListingID = m.ListingID
	r.BookingDate = m.BookingDate.Format(constant.DateOnlyFormat)
	r.StartTime = m.StartTime
	r.EndTime = m.EndTime
	r.NumberOfPeople = m.NumberOfPeople
	r.TotalAmount = m.TotalAmount
	r.Status = m.Status.String()
	r.SpecialRequests = m.SpecialRequests
	r.ListingTitle = m.ListingTitle
	r.ListingCity = m.ListingCity
	r.TouristName = m.TouristName
	r.TouristEmail = m.TouristEmail
	r.GuideName = m.GuideName
	r.GuideEmail = m.GuideEmail
	r.PaymentStatus = m.PaymentStatus
	r.Reviewed = m.ReviewID != nil
	r.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Pagination gDto.Pagination   `json:"pagination"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, total int, params gDto.QueryParams) {
	r.Pagination = gDto.NewPagination(total, params)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type StatsResponse struct {
	Total         int     `json:"total"`
	Pending       int     `json:"pending"`
	Confirmed     int     `json:"confirmed"`
	Completed     int     `json:"completed"`
	Cancelled     int     `json:"cancelled"`
	TotalEarnings float64 `json:"total_earnings"`
}

// ListBookingsQuery lists bookings. Sort keys are createdAt, bookingDate and totalAmount.
type ListBookingsQuery struct {
	gDto.QueryParams
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

func (q *ListBookingsQuery) FromRequest(r *http.Request) {
	q.QueryParams.FromRequest(r, true)
	q.QueryParams.ResolveSort(sortColumns, SortCreatedAt)

	query := r.URL.Query()

	if status := strings.ToUpper(query.Get(model.FieldStatus)); status != "" {
		q.Status = status
	}

	q.StartDate = parseDate(query.Get("start_date"))
	q.EndDate = parseDate(query.Get("end_date"))
}

// Filter scopes the listing to the caller: tourists see their trips, guides their tours, admins everything.
func (q *ListBookingsQuery) Filter(userID, role string) gDto.FilterGroup {
	filter := ScopeFilter(userID, role)

	if q.Status != "" {
		filter.Add(gDto.Filter{Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.Status})
	}

	if q.StartDate != nil {
		filter.Add(gDto.Filter{ArgName: "start_date", Field: model.FieldBookingDate, Table: model.TableName, Operator: gDto.FilterOperatorGreaterEq, Value: *q.StartDate})
	}

	if q.EndDate != nil {
		filter.Add(gDto.Filter{ArgName: "end_date", Field: model.FieldBookingDate, Table: model.TableName, Operator: gDto.FilterOperatorLessEq, Value: *q.EndDate})
	}

	return filter
}

// ScopeFilter restricts bookings to the ones the caller takes part in.
func ScopeFilter(userID, role string) gDto.FilterGroup {
	filter := gDto.NewFilterGroup()

	switch role {
	case constant.RoleTourist:
		filter.Add(gDto.Filter{Field: model.FieldTouristID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: userID})
	case constant.RoleGuide:
		filter.Add(gDto.Filter{Field: model.FieldGuideID, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: userID})
	}

	return filter
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}

	date, err := timezone.Parse(constant.DateOnlyFormat, value)
	if err != nil {
		return nil
	}

	return &date
}
