package dto

import (
	bookingModel "localguide/internal/domains/booking/model"
	bookingDto "localguide/internal/domains/booking/model/dto"
	reviewModel "localguide/internal/domains/review/model"
	reviewDto "localguide/internal/domains/review/model/dto"
	userModel "localguide/internal/domains/user/model"
	userDto "localguide/internal/domains/user/model/dto"
)

type AdminStats struct {
	TotalUsers        int     `json:"total_users"`
	TotalGuides       int     `json:"total_guides"`
	TotalTourists     int     `json:"total_tourists"`
	TotalListings     int     `json:"total_listings"`
	TotalBookings     int     `json:"total_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
}

type TopGuide struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ProfilePic    string  `json:"profile_pic"`
	City          string  `json:"city"`
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

type AdminDashboard struct {
	Stats          AdminStats                   `json:"stats"`
	RecentBookings []bookingDto.BookingResponse `json:"recent_bookings"`
	RecentUsers    []userDto.UserResponse       `json:"recent_users"`
	TopGuides      []TopGuide                   `json:"top_guides"`
}

func (d *AdminDashboard) FromModels(bookings []bookingModel.Booking, users []userModel.User, guides []userModel.Profile) {
	d.RecentBookings = bookingResponses(bookings)

	d.RecentUsers = make([]userDto.UserResponse, len(users))
	for i, user := range users {
		d.RecentUsers[i].FromModel(user)
	}

	d.TopGuides = make([]TopGuide, len(guides))
	for i, guide := range guides {
		d.TopGuides[i] = TopGuide{
			ID:            guide.ID,
			Name:          guide.Name,
			ProfilePic:    guide.ProfilePic,
			City:          guide.City,
			ReviewCount:   guide.Reviews(),
			AverageRating: guide.Rating(),
		}
	}
}

type GuideStats struct {
	TotalListings     int     `json:"total_listings"`
	ActiveListings    int     `json:"active_listings"`
	TotalBookings     int     `json:"total_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	TotalEarnings     float64 `json:"total_earnings"`
	TotalReviews      int     `json:"total_reviews"`
	AverageRating     float64 `json:"average_rating"`
}

type GuideDashboard struct {
	Stats            GuideStats                   `json:"stats"`
	UpcomingBookings []bookingDto.BookingResponse `json:"upcoming_bookings"`
	RecentReviews    []reviewDto.ReviewResponse   `json:"recent_reviews"`
}

func (d *GuideDashboard) FromModels(upcoming []bookingModel.Booking, reviews []reviewModel.Review) {
	d.UpcomingBookings = bookingResponses(upcoming)

	d.RecentReviews = make([]reviewDto.ReviewResponse, len(reviews))
	for i, review := range reviews {
		d.RecentReviews[i].FromModel(review)
	}
}

type TouristStats struct {
	TotalBookings     int     `json:"total_bookings"`
	UpcomingBookings  int     `json:"upcoming_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	TotalSpent        float64 `json:"total_spent"`
	ReviewsGiven      int     `json:"reviews_given"`
}

type TouristDashboard struct {
	Stats         TouristStats                 `json:"stats"`
	UpcomingTrips []bookingDto.BookingResponse `json:"upcoming_trips"`
	PastTrips     []bookingDto.BookingResponse `json:"past_trips"`
}

func (d *TouristDashboard) FromModels(upcoming, past []bookingModel.Booking) {
	d.UpcomingTrips = bookingResponses(upcoming)
	d.PastTrips = bookingResponses(past)
}

func bookingResponses(bookings []bookingModel.Booking) []bookingDto.BookingResponse {
	res := make([]bookingDto.BookingResponse, len(bookings))
	for i, booking := range bookings {
		res[i].FromModel(booking)
	}

	return res
}
