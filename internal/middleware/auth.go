package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pitchroast/api/internal/auth"
	"github.com/pitchroast/api/pkg/response"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtSecret string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate validates the JWT token from the Authorization header and
// rejects requests without a valid one.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := m.claimsFromHeader(c)
		if !ok {
			return response.Unauthorized(c, "Invalid or missing token")
		}

		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}

// Optional attaches the caller's identity when a valid token is present
// and lets the request through either way. Uploads and roasts work
// anonymously; a token only ties them to an account.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, ok := m.claimsFromHeader(c); ok {
			c.Locals("userId", claims.UserID)
			c.Locals("email", claims.Email)
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) claimsFromHeader(c *fiber.Ctx) (*auth.Claims, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	claims, err := auth.ValidateToken(parts[1], m.jwtSecret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserID extracts the user ID from context, empty when anonymous.
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}

// GetEmail extracts the user email from context, empty when anonymous.
func GetEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals("email").(string); ok {
		return email
	}
	return ""
}
