package route

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/constants"
	"kanisa_backend/internals/features/attendance/sessions/controller"
	"kanisa_backend/internals/features/attendance/sessions/service"
	rateLimiter "kanisa_backend/internals/middlewares"
	authMw "kanisa_backend/internals/middlewares/auth"
)

// SessionAdminRoutes mounts under the authenticated admin group.
func SessionAdminRoutes(admin fiber.Router, svc *service.Service) {
	ctl := controller.NewSessionController(svc)

	qr := admin.Group("/attendance/qr-session")
	{
		qr.Post("/", ctl.CreateQRSession)
		qr.Get("/", ctl.GetQRSession)
		qr.Put("/", ctl.UpdateQRSession)
	}

	sessions := admin.Group("/attendance/sessions")
	{
		sessions.Post("/migrate-legacy",
			authMw.OnlyRoles(constants.RoleErrorAdmin("legacy migration"), constants.AdminOnly...),
			ctl.MigrateLegacy)
		sessions.Post("/", ctl.CreateSession)
		sessions.Get("/", ctl.ListSessions)
		sessions.Get("/:id", ctl.GetSession)
		sessions.Post("/:id/generate-qr", ctl.GenerateQR)
	}
	log.Println("[INFO] attendance session routes registered")
}

// SessionPublicRoutes exposes what the check-in page needs, nothing more.
func SessionPublicRoutes(public fiber.Router, svc *service.Service) {
	ctl := controller.NewSessionController(svc)
	public.Get("/attendance/qr-session/:qr_session_id", rateLimiter.CheckinRateLimiter(), ctl.PublicSession)
}
