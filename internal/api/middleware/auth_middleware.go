package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/pkg/utils"
)

// AuthMiddleware admits requests carrying a valid session cookie and stores
// the user id in c.Locals("user_id").
type AuthMiddleware struct {
	cfg config.Config
	key []byte
}

func NewAuthMiddleware(cfg config.Config, sessionKey []byte) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg, key: sessionKey}
}

func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing session cookie",
			})
		}

		claims, err := utils.ValidateToken(m.key, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   m.cfg.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1, // Delete cookie
			})

			log.Printf("Token validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

// OptionalSession sets c.Locals("user_id") when the session cookie is valid
// and lets the request through either way. Routes behind it must handle a
// missing user themselves.
func (m *AuthMiddleware) OptionalSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		if tokenString == "" {
			return c.Next()
		}

		claims, err := utils.ValidateToken(m.key, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   m.cfg.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
			log.Printf("Token validation failed: %v", err)
			return c.Next()
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}
