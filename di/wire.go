//go:build wireinject
// +build wireinject

package di

import (
	"localguide/config"
	"localguide/infras/jwt"
	"localguide/infras/otel"
	"localguide/infras/postgres"
	"localguide/infras/redis"
	"localguide/infras/s3"
	"localguide/infras/stripe"
	"localguide/shared/cache"
	"localguide/shared/transaction"
	"localguide/transport/http"
	"localguide/transport/http/middleware"
	"localguide/transport/http/router"

	"github.com/google/wire"

	authService "localguide/internal/domains/auth/service"
	bookingRepository "localguide/internal/domains/booking/repository"
	bookingService "localguide/internal/domains/booking/service"
	dashboardService "localguide/internal/domains/dashboard/service"
	listingRepository "localguide/internal/domains/listing/repository"
	listingService "localguide/internal/domains/listing/service"
	paymentRepository "localguide/internal/domains/payment/repository"
	paymentService "localguide/internal/domains/payment/service"
	reviewRepository "localguide/internal/domains/review/repository"
	reviewService "localguide/internal/domains/review/service"
	uploadService "localguide/internal/domains/upload/service"
	userRepository "localguide/internal/domains/user/repository"
	userService "localguide/internal/domains/user/service"

	authHandler "localguide/internal/handlers/auth"
	bookingHandler "localguide/internal/handlers/booking"
	dashboardHandler "localguide/internal/handlers/dashboard"
	listingHandler "localguide/internal/handlers/listing"
	paymentHandler "localguide/internal/handlers/payment"
	reviewHandler "localguide/internal/handlers/review"
	uploadHandler "localguide/internal/handlers/upload"
	userHandler "localguide/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	stripe.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	transaction.New,
)

var repositories = wire.NewSet(
	userRepository.New,
	userRepository.NewProfile,
	listingRepository.New,
	bookingRepository.New,
	reviewRepository.New,
	paymentRepository.New,
)

var domains = wire.NewSet(
	authService.New,
	userService.New,
	listingService.New,
	bookingService.New,
	reviewService.New,
	paymentService.New,
	dashboardService.New,
	uploadService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	listingHandler.New,
	bookingHandler.New,
	reviewHandler.New,
	paymentHandler.New,
	dashboardHandler.New,
	uploadHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
