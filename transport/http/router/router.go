package router

import (
	"localguide/internal/handlers/auth"
	"localguide/internal/handlers/booking"
	"localguide/internal/handlers/dashboard"
	"localguide/internal/handlers/listing"
	"localguide/internal/handlers/payment"
	"localguide/internal/handlers/review"
	"localguide/internal/handlers/upload"
	"localguide/internal/handlers/user"
	"localguide/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth      auth.Handler
	User      user.Handler
	Listing   listing.Handler
	Booking   booking.Handler
	Review    review.Handler
	Payment   payment.Handler
	Dashboard dashboard.Handler
	Upload    upload.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.NotFound(response.WithNotFound)

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Listing.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Review.Router(routerGroup)
		r.DomainHandlers.Payment.Router(routerGroup)
		r.DomainHandlers.Dashboard.Router(routerGroup)
		r.DomainHandlers.Upload.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
