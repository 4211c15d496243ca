package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/events/events/controller"
)

func EventAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewEventController(db)

	g := admin.Group("/events")
	{
		g.Post("/", ctl.Create)
		g.Get("/", ctl.List)
		g.Get("/:id", ctl.Detail)
		g.Patch("/:id", ctl.Update)
		g.Delete("/:id", ctl.Delete)
	}
}
