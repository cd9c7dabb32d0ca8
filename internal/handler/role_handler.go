package handler

import (
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RoleHandler serves the read-only access catalog used by the staff screens.
type RoleHandler struct {
	users service.UserService
}

func NewRoleHandler(users service.UserService) *RoleHandler {
	return &RoleHandler{users: users}
}

// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.users.GetAllRoles(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(roles)
}

// GetPrivileges lists every privilege code that can be granted
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.users.GetAllPrivileges(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(privileges)
}
