package handler

import (
	"strconv"

	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDailySummary returns sales, DP and buyback totals for a day
// Query params: date (YYYY-MM-DD, default today)
func (h *DashboardHandler) GetDailySummary(c *fiber.Ctx) error {
	day, err := queryDay(c, "date", h.service.Today())
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.service.GetDailySummary(c.UserContext(), day)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(summary)
}
