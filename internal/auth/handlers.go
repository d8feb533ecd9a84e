package auth

import (
	"context"

	"gatherly-backend/internal/middleware"
	"gatherly-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Service *Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// POST /api/v1/auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body RegisterInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}

	u, err := h.Service.Register(c.Context(), body)
	if err != nil {
		switch err {
		case ErrFullnameRequired, ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), 400)
		case ErrEmailTaken:
			return response.Error(c, err.Error(), 400)
		default:
			return response.Error(c, "Internal Server Error", 500)
		}
	}

	h.startSession(c, u.UserID.String(), u.Fullname, u.Email)
	return response.Created(c, "Account created successfully", SessionUserShape{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
	})
}

// POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body LoginInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}

	u, err := h.Service.Login(c.Context(), body)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), 400)
		case ErrInvalidEmail, ErrIncorrectPassword:
			return response.Error(c, err.Error(), 401)
		default:
			return response.Error(c, "Internal Server Error", 500)
		}
	}

	h.startSession(c, u.UserID.String(), u.Fullname, u.Email)
	return response.Success(c, "Logged in successfully", SessionUserShape{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
	})
}

// GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	shape, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, err.Error())
	}
	return response.Success(c, "Authenticated", shape)
}

// DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sid := middleware.GetSessionID(c)
	if sid != "" && h.Rdb != nil {
		h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sid)
	}
	middleware.DestroySession(c)
	c.Locals("session_id", "")

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil)
}

func (h *Handlers) startSession(c *fiber.Ctx, userID, fullname, email string) {
	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   userID,
		Fullname: fullname,
		Email:    email,
	})
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sid
	c.Cookie(&cookie)
}
