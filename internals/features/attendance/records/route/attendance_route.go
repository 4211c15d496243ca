package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/attendance/exports"
	"kanisa_backend/internals/features/attendance/records/controller"
	"kanisa_backend/internals/features/attendance/records/service"
	sessionService "kanisa_backend/internals/features/attendance/sessions/service"
)

func AttendanceAdminRoutes(admin fiber.Router, db *gorm.DB, sessions *sessionService.Service) {
	ctl := controller.NewAttendanceController(
		service.New(db, sessions),
		exports.New(db, sessions),
	)

	g := admin.Group("/attendance")
	{
		g.Post("/", ctl.SaveRoster)
		g.Get("/", ctl.List)
		g.Get("/export", ctl.Export)
	}
}
