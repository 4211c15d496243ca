package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/members/departments/controller"
	"kanisa_backend/internals/features/members/departments/service"
)

func DepartmentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewDepartmentController(service.New(db))

	g := admin.Group("/departments")
	{
		g.Post("/", ctl.Create)
		g.Get("/", ctl.List)
		g.Get("/:id", ctl.Detail)
		g.Patch("/:id", ctl.Update)
		g.Delete("/:id", ctl.Delete)

		g.Get("/:id/members", ctl.Members)
		g.Post("/:id/members", ctl.AddMember)
		g.Delete("/:id/members/:member_id", ctl.RemoveMember)
	}
}
