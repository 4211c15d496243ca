package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/configs"
	"kanisa_backend/internals/features/reports/insights/controller"
	"kanisa_backend/internals/features/reports/insights/service"
)

func ReportAdminRoutes(admin fiber.Router, db *gorm.DB, cfg *configs.Config) {
	ctl := controller.NewReportController(
		service.NewCollector(db, cfg.ChurchName, cfg.DefaultCurrency),
		service.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel),
	)

	g := admin.Group("/reports")
	{
		g.Get("/summary", ctl.Summary)
		g.Post("/insights", ctl.Insights)
	}
}
