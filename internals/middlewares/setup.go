package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/configs"
	requestLogger "kanisa_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide chain in order.
func SetupMiddlewares(app *fiber.App, cfg *configs.Config) {
	app.Use(RecoveryMiddleware(!cfg.IsProduction()))
	app.Use(RequestID())
	app.Use(requestLogger.LoggerMiddleware(cfg.Timezone))
	app.Use(CorsMiddleware(cfg.CORSOrigins))
	app.Use(RequestTimeout(cfg.RequestTimeout))
}
