package middleware

import (
	"errors"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	localUser   = "user"
	localClaims = "token_claims"
)

// AuthRequired is a Fiber middleware that rejects requests without a valid token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return authenticate(authService, true)
}

// OptionalAuth resolves the requester when a token is sent and lets anonymous requests
// through. A token that is sent but invalid is still rejected.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return authenticate(authService, false)
}

func authenticate(authService *services.AuthService, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			if required {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"detail": "Authentication credentials were not provided.",
				})
			}
			return c.Next()
		}

		// Expected format: "Token <token>" or "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || (parts[0] != "Token" && parts[0] != "Bearer") || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Authorization header format must be 'Token <token>'.",
			})
		}

		user, claims, err := authService.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				log.Errorf("token authentication failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"detail": "Could not authenticate request.",
				})
			}
			log.Debugf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Invalid token.",
			})
		}

		c.Locals(localUser, user)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// CurrentUser returns the authenticated requester or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CurrentClaims returns the claims of the token the request was authenticated with.
func CurrentClaims(c *fiber.Ctx) *services.TokenClaims {
	claims, _ := c.Locals(localClaims).(*services.TokenClaims)
	return claims
}
