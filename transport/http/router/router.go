package router

import (
	"roadbook/internal/handlers/admin"
	"roadbook/internal/handlers/booking"
	"roadbook/internal/handlers/slot"
	"roadbook/shared/constant"
	"roadbook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Slot    slot.Handler
	Booking booking.Handler
	Admin   admin.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	AuthRole       middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.AuthRole.APIKey, r.AuthRole.Auth, r.AuthRole.RBAC)

		r.DomainHandlers.Slot.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)

		routerGroup.Group(func(admins chi.Router) {
			admins.Use(r.AuthRole.RequireRole(constant.RoleAdmin))
			r.DomainHandlers.Admin.Router(admins)
		})
	})
}

func New(domainHandlers DomainHandlers, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		AuthRole:       authRole,
	}
}
