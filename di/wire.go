//go:build wireinject
// +build wireinject

package di

import (
	"roadbook/config"
	"roadbook/infras/jwt"
	"roadbook/infras/kafka"
	"roadbook/infras/metrics"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	"roadbook/infras/redis"
	"roadbook/permissions"
	"roadbook/shared/cache"
	"roadbook/shared/timezone"
	"roadbook/transport/http"
	"roadbook/transport/http/middleware"
	"roadbook/transport/http/router"

	"github.com/google/wire"

	bookingRepository "roadbook/internal/domains/booking/repository"
	bookingService "roadbook/internal/domains/booking/service"
	roadRepository "roadbook/internal/domains/road/repository"
	roadService "roadbook/internal/domains/road/service"
	slotRepository "roadbook/internal/domains/slot/repository"
	slotService "roadbook/internal/domains/slot/service"
	userRepository "roadbook/internal/domains/user/repository"
	adminHandler "roadbook/internal/handlers/admin"
	bookingHandler "roadbook/internal/handlers/booking"
	slotHandler "roadbook/internal/handlers/slot"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	timezone.NewClock,
)

var roadDomain = wire.NewSet(
	roadRepository.New,
	roadService.New,
)

var slotDomain = wire.NewSet(
	slotRepository.New,
	slotService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingRepository.NewLine,
	bookingService.New,
	userRepository.New,
)

var domains = wire.NewSet(
	roadDomain,
	slotDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	slotHandler.New,
	bookingHandler.New,
	adminHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
