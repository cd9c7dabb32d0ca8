package middleware

import (
	"context"
	"errors"
	"strings"

	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth.
const (
	LocalUserID     = "user_id"
	LocalUserEmail  = "user_email"
	LocalUserName   = "user_name"
	LocalRoleCode   = "user_role"
	LocalPrivileges = "user_privileges"

	// LocalError carries an internal error to RequestLogger.
	LocalError = "request_error"
)

// TokenValidator resolves a bearer token to the current user state.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*service.TokenValidationResponse, error)
}

// RequireAuth validates the bearer token against the stored session and sets user info in context
func RequireAuth(auth TokenValidator) fiber.Handler {
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

		session, err := auth.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionReplaced), errors.Is(err, service.ErrSessionTimeout),
				errors.Is(err, service.ErrUserInactive), errors.Is(err, service.ErrUserNotFound):
				return c.Status(401).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		roleCode := ""
		if session.Role != nil {
			roleCode = session.Role.Code
		}

		// privileges come from the database so revocations apply immediately
		c.Locals(LocalUserID, session.User.ID.String())
		c.Locals(LocalUserEmail, session.User.Email)
		c.Locals(LocalUserName, session.User.FullName)
		c.Locals(LocalRoleCode, roleCode)
		c.Locals(LocalPrivileges, session.Privileges)

		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
