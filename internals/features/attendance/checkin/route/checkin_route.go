package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/attendance/checkin/controller"
	"kanisa_backend/internals/features/attendance/checkin/service"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
	rateLimiter "kanisa_backend/internals/middlewares"
)

// CheckinRoutes mounts the JSON endpoint on public and the HTML form on app.
func CheckinRoutes(app fiber.Router, public fiber.Router, db *gorm.DB, sessions *sessionService.Service, churchName string) {
	ctl := controller.NewCheckinController(service.New(db, sessions), sessions, churchName)

	public.Post("/attendance/qr-checkin", rateLimiter.CheckinRateLimiter(), ctl.CheckIn)
	app.Get("/checkin/:qr_session_id", rateLimiter.CheckinRateLimiter(), ctl.Page)
}
