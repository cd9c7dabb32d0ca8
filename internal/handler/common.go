package handler

import (
	"errors"
	"fmt"
	"time"

	"go-jewelry-pos/internal/middleware"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"
	"go-jewelry-pos/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(middleware.LocalUserID).(string); ok {
		return userID
	}
	return "system"
}

func getUserName(c *fiber.Ctx) string {
	if name, ok := c.Locals(middleware.LocalUserName).(string); ok {
		return name
	}
	return "Unknown"
}

func getUserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(middleware.LocalUserEmail).(string)
	return email
}

func actorFromCtx(c *fiber.Ctx) service.Actor {
	return service.Actor{ID: getUserID(c), Name: getUserName(c), Email: getUserEmail(c)}
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", validator.ErrValidation, name)
	}
	return id, nil
}

// queryDay reads an optional YYYY-MM-DD query value, falling back to def.
func queryDay(c *fiber.Ctx, key string, def time.Time) (time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return def, nil
	}
	day, err := model.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", validator.ErrValidation, key)
	}
	return day, nil
}

// queryRange reads from/to, both defaulting to today.
func queryRange(c *fiber.Ctx, today time.Time) (time.Time, time.Time, error) {
	from, err := queryDay(c, "from", today)
	if err != nil {
		return from, from, err
	}
	to, err := queryDay(c, "to", today)
	if err != nil {
		return from, to, err
	}
	if to.Before(from) {
		return from, to, service.ErrInvalidDateRange
	}
	return from, to, nil
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
}

var notFoundErrors = []error{
	gorm.ErrRecordNotFound,
	service.ErrItemNotFound,
	service.ErrSaleNotFound,
	service.ErrSlideNotFound,
	service.ErrUserNotFound,
	service.ErrRoleNotFound,
	service.ErrNoGoldPrice,
}

var conflictErrors = []error{
	gorm.ErrDuplicatedKey,
	service.ErrDuplicateItemCode,
	service.ErrEmailExists,
	service.ErrInsufficientStock,
	service.ErrSaleAlreadyPaid,
	service.ErrSaleVoided,
	service.ErrLastOwner,
	service.ErrPeriodClosed,
}

var badRequestErrors = []error{
	validator.ErrValidation,
	service.ErrInvalidQuantity,
	service.ErrInvalidMovementKind,
	service.ErrFutureDate,
	service.ErrInvalidDateRange,
	service.ErrOverpayment,
	service.ErrInvalidDownPayment,
	service.ErrInvalidPayment,
	service.ErrEmptySale,
	service.ErrCategoryMismatch,
	service.ErrInvalidPaymentMethod,
	service.ErrInvalidGrade,
	service.ErrInvalidPercentage,
	service.ErrInvalidWeight,
	service.ErrPurgeNotPast,
	service.ErrUnsupportedFormat,
	service.ErrDeleteYourself,
	service.ErrWeakPassword,
	service.ErrWrongPassword,
}

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case matchAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case matchAny(err, conflictErrors):
		return fiber.StatusConflict
	case matchAny(err, badRequestErrors):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrGoldFeedDisabled), errors.Is(err, service.ErrNoArchiveSink):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// respondError replies {"error": ...}. Internal errors are logged, not echoed.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		c.Locals(middleware.LocalError, err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
