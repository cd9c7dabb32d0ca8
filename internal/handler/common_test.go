package handler

import (
	"errors"
	"fmt"
	"testing"

	"go-jewelry-pos/internal/service"
	"go-jewelry-pos/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrSaleNotFound, fiber.StatusNotFound},
		{fmt.Errorf("%w 24K on 2026-10-17", service.ErrNoGoldPrice), fiber.StatusNotFound},
		{fmt.Errorf("line 1: %w: ACC-01", service.ErrInsufficientStock), fiber.StatusConflict},
		{gorm.ErrDuplicatedKey, fiber.StatusConflict},
		{service.ErrLastOwner, fiber.StatusConflict},
		{fmt.Errorf("failed to purge before 2026-10-01: %w", service.ErrPeriodClosed), fiber.StatusConflict},
		{fmt.Errorf("%w: Field 'Code'", validator.ErrValidation), fiber.StatusBadRequest},
		{service.ErrFutureDate, fiber.StatusBadRequest},
		{service.ErrGoldFeedDisabled, fiber.StatusServiceUnavailable},
		{service.ErrNoArchiveSink, fiber.StatusServiceUnavailable},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
