package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	authService service.AuthService
}

func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// Me returns the authenticated caller
// GET /api/v1/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	actor := actorFrom(c)
	return c.JSON(fiber.Map{
		"id":       actor.ID,
		"username": actor.Username,
		"is_admin": actor.IsAdmin,
	})
}

// GetUsers lists every account (admin only)
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
