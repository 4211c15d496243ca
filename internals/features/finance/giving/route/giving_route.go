package route

import (
	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/finance/giving/controller"
	"kanisa_backend/internals/features/finance/giving/service"
)

func GivingAdminRoutes(finance fiber.Router, svc *service.Service) {
	ctl := controller.NewGivingController(svc)
	finance.Post("/giving", ctl.Give)
}

// GivingPublicRoutes mounts the gateway webhook; it is authenticated by
// the payload signature, not a bearer token.
func GivingPublicRoutes(public fiber.Router, svc *service.Service) {
	ctl := controller.NewGivingController(svc)
	public.Post("/finance/giving/notification", ctl.Notification)
}
