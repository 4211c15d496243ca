package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/features/members/members/controller"
	"kanisa_backend/internals/features/members/members/service"
)

func MemberAdminRoutes(admin fiber.Router, db *gorm.DB, photos service.PhotoUploader) {
	ctl := controller.NewMemberController(service.New(db, photos))

	g := admin.Group("/members")
	{
		g.Post("/", ctl.Create)
		g.Get("/", ctl.List)
		g.Get("/:id", ctl.Detail)
		g.Patch("/:id", ctl.Update)
		g.Delete("/:id", ctl.Delete)
		g.Post("/:id/photo", ctl.UploadPhoto)
	}
}
