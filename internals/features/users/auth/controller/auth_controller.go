package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"kanisa_backend/internals/features/users/auth/dto"
	"kanisa_backend/internals/features/users/auth/service"
	helper "kanisa_backend/internals/helpers"
	authMw "kanisa_backend/internals/middlewares/auth"
)

type AuthController struct {
	Svc          *service.Service
	SecureCookie bool
}

func NewAuthController(svc *service.Service, secureCookie bool) *AuthController {
	return &AuthController{Svc: svc, SecureCookie: secureCookie}
}

// ========== Login ==========
// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	res, err := ac.Svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    res.Token,
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   ac.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return helper.JsonOK(c, "Login successful", dto.LoginResponse{
		AccessToken: res.Token,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        dto.FromUser(res.User),
	})
}

// ========== Logout ==========
// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	token, err := authMw.ExtractBearerToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	if err := ac.Svc.Logout(c.UserContext(), token); err != nil {
		return helper.JsonAppError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   ac.SecureCookie,
		Path:     "/",
	})
	return helper.JsonOK(c, "Logout successful", nil)
}

// ========== Me ==========
// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	claims := authMw.ClaimsFrom(c)
	if claims == nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	user, err := ac.Svc.Me(c.UserContext(), claims)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromUser(user))
}

// ========== Create user ==========
// POST /api/auth/users (admin)
func (ac *AuthController) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	user, err := ac.Svc.CreateUser(c.UserContext(), service.CreateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "User created", dto.FromUser(user))
}
