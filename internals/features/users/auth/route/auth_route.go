// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanisa_backend/internals/configs"
	"kanisa_backend/internals/constants"
	"kanisa_backend/internals/features/users/auth/controller"
	"kanisa_backend/internals/features/users/auth/service"
	rateLimiter "kanisa_backend/internals/middlewares"
	authMw "kanisa_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth.
func AuthRoutes(r fiber.Router, db *gorm.DB, cfg *configs.Config) {
	svc := service.New(db, cfg.JWTSecret, cfg.JWTTTL)
	ctrl := controller.NewAuthController(svc, cfg.IsProduction())
	protected := authMw.AuthMiddleware(db, cfg.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
		auth.Post("/logout", protected, ctrl.Logout)
		auth.Get("/me", protected, ctrl.Me)
		auth.Post("/users", protected,
			authMw.OnlyRoles(constants.RoleErrorAdmin("user management"), constants.AdminOnly...),
			ctrl.CreateUser)
	}
}
