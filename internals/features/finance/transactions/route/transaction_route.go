package route

import (
	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/finance/transactions/controller"
	"kanisa_backend/internals/features/finance/transactions/service"
)

// TransactionAdminRoutes expects finance to be already role-guarded.
func TransactionAdminRoutes(finance fiber.Router, svc *service.Service) {
	ctl := controller.NewTransactionController(svc)

	g := finance.Group("/transactions")
	{
		g.Post("/", ctl.Create)
		g.Get("/", ctl.List)
		g.Get("/:id", ctl.Detail)
		g.Patch("/:id", ctl.Update)
		g.Delete("/:id", ctl.Delete)
	}
	finance.Get("/summary", ctl.Summary)
}
