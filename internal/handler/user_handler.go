package handler

import (
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler manages staff accounts. Every route is owner-only except the listings.
type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.users.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// CreateUser starts the account with its role's default privileges
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.users.CreateUser(c.UserContext(), &req, actorFromCtx(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "User created", "data": user.ToResponse()})
}

// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.users.UpdateUser(c.UserContext(), id, &req, actorFromCtx(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated", "data": user.ToResponse()})
}

// UpdateUserPrivileges replaces the grant set and signs the user out
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.users.UpdateUserPrivileges(c.UserContext(), id, req.Privileges, actorFromCtx(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Privileges updated", "data": user.ToResponse()})
}

// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.users.DeleteUser(c.UserContext(), id, actorFromCtx(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
