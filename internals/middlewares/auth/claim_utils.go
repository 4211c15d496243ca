// internals/middlewares/auth/claim_utils.go
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	authService "kanisa_backend/internals/features/users/auth/service"
	helper "kanisa_backend/internals/helpers"
)

const localsClaims = "claims"

/* ======== Extractors ======== */

// ExtractBearerToken is exported for the logout handler.
func ExtractBearerToken(c *fiber.Ctx) (string, error) { return extractBearerToken(c) }

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("Unauthorized - No token provided")
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("Unauthorized - Invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("Unauthorized - Empty token")
	}
	return tok, nil
}

// parseClaims verifies the HMAC signature only.
func parseClaims(token, secret string) (*authService.Claims, error) {
	claims := &authService.Claims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func validateTokenExpiry(claims *authService.Claims, now time.Time, skew time.Duration) error {
	if claims.ExpiresAt == nil {
		return fmt.Errorf("token has no exp")
	}
	exp := claims.ExpiresAt.Time.UTC()
	if now.UTC().After(exp.Add(skew)) {
		return fmt.Errorf("token expired at %v", exp)
	}
	return nil
}

/* ======== Store claims to Locals ======== */

func storeClaimsToLocals(c *fiber.Ctx, token string, claims *authService.Claims) {
	if id, err := claims.UserID(); err == nil {
		c.Locals(helper.LocalsUserID, id)
	}
	c.Locals(helper.LocalsRole, strings.ToLower(claims.Role))
	c.Locals(helper.LocalsEmail, claims.Email)
	c.Locals(helper.LocalsToken, token)
	c.Locals(localsClaims, claims)
}
