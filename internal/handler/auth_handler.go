package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pitchroast/api/internal/auth"
	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/service"
	"github.com/pitchroast/api/pkg/response"
)

type AuthHandler struct {
	service   *service.AuthService
	validator *validator.Validate
	jwtSecret string
}

func NewAuthHandler(svc *service.AuthService, v *validator.Validate, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		service:   svc,
		validator: v,
		jwtSecret: jwtSecret,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "A valid email and a password of at least 8 characters are required", nil)
	}

	result, err := h.service.Register(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return response.ValidationError(c, "Email already registered", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Email and password are required", nil)
	}

	result, err := h.service.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return response.Unauthorized(c, "Invalid email or password")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Verify handles GET /auth/verify — gateway ForwardAuth check.
// Returns 200 with X-User-* headers on success, 401 on failure.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	claims, err := auth.ValidateToken(parts[1], h.jwtSecret)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	c.Set("X-User-Id", claims.UserID)
	c.Set("X-User-Email", claims.Email)
	return c.SendStatus(fiber.StatusOK)
}
