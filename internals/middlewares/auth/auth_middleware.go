// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authRepo "kanisa_backend/internals/features/users/auth/repository"
	authService "kanisa_backend/internals/features/users/auth/service"
	helper "kanisa_backend/internals/helpers"
	"kanisa_backend/internals/helpers/logger"
)

// expirySkew tolerates small clock drift between issuer and verifier.
const expirySkew = 30 * time.Second

func AuthMiddleware(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Authorization header (or access_token cookie)
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		// 2) Blacklist, once per request
		if c.Locals("token_checked") == nil {
			blacklisted, err := authRepo.IsTokenBlacklisted(db, tokenString)
			if err != nil {
				logger.L.Error("[AUTH] blacklist lookup failed", zap.Error(err))
				return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
			}
			if blacklisted {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
			}
			c.Locals("token_checked", true)
		}

		// 3) Signature; expiry is checked below with skew
		if secret == "" {
			logger.L.Error("[AUTH] JWT secret is empty")
			return helper.JsonError(c, fiber.StatusInternalServerError, "Missing JWT Secret")
		}
		claims, err := parseClaims(tokenString, secret)
		if err != nil {
			logger.L.Debug("[AUTH] token parse error", zap.Error(err))
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		// 4) exp
		if err := validateTokenExpiry(claims, time.Now(), expirySkew); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		// 5) user must exist and be active
		userID, err := claims.UserID()
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		active, err := authRepo.IsUserActive(db, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			logger.L.Error("[AUTH] user lookup failed", zap.Error(err))
			return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
		}
		if !active {
			return helper.JsonError(c, fiber.StatusForbidden, "Your account has been disabled")
		}

		// 6) claims into locals
		storeClaimsToLocals(c, tokenString, claims)
		return c.Next()
	}
}

// Claims is re-exported so handlers can read the verified token.
type Claims = authService.Claims

// ClaimsFrom returns the claims stored by AuthMiddleware, or nil.
func ClaimsFrom(c *fiber.Ctx) *Claims {
	cl, _ := c.Locals(localsClaims).(*Claims)
	return cl
}
