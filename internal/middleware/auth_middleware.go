package middleware

import (
	"strings"

	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// ActorKey is the c.Locals key holding the authenticated service.Actor.
const ActorKey = "actor"

// RequireAuth validates the bearer token and stores the caller as a
// service.Actor in the request context.
func RequireAuth(userRepo repository.UserRepository, tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// the account may have been removed since the token was issued
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}

		c.Locals(ActorKey, service.ActorFromUser(user))
		c.Locals("user_id", user.ID.String())
		c.Locals("username", user.Username)

		return c.Next()
	}
}

// RequireAdmin only lets administrators through. It must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals(ActorKey).(service.Actor)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !actor.IsAdmin {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: administrator access required"})
		}
		return c.Next()
	}
}
