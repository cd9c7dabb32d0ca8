package handler

import (
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

// AddStock records incoming goods
// POST /api/v1/stock/add
func (h *StockHandler) AddStock(c *fiber.Ctx) error {
	var req service.AddStockRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	movement, err := h.service.AddStock(c.UserContext(), &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock added", "data": movement})
}

// RecordUsage records stock leaving the shelf outside of a sale receipt
// POST /api/v1/stock/usage
func (h *StockHandler) RecordUsage(c *fiber.Ctx) error {
	var req service.UsageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	movement, err := h.service.RecordUsage(c.UserContext(), &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock usage recorded", "data": movement})
}

type lockReplacementRequest struct {
	ItemCode string `json:"item_code"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// LockReplacement records a clasp swapped on a customer's piece
// POST /api/v1/stock/lock-replacement
func (h *StockHandler) LockReplacement(c *fiber.Ctx) error {
	var req lockReplacementRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	movement, err := h.service.LockReplacement(c.UserContext(), req.ItemCode, req.Quantity, req.Note, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Lock replacement recorded", "data": movement})
}

// GetView returns the stock report as of a day
// GET /api/v1/stock/view?date=YYYY-MM-DD
func (h *StockHandler) GetView(c *fiber.Ctx) error {
	today := h.service.Today()
	day, err := queryDay(c, "date", today)
	if err != nil {
		return respondError(c, err)
	}
	if day.After(today) {
		return respondError(c, service.ErrFutureDate)
	}

	view, err := h.service.StockAsOf(c.UserContext(), day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetMovements lists movements of a date range, optionally for one item
// GET /api/v1/stock/movements?from=&to=&item_code=
func (h *StockHandler) GetMovements(c *fiber.Ctx) error {
	from, to, err := queryRange(c, h.service.Today())
	if err != nil {
		return respondError(c, err)
	}

	movements, err := h.service.ListMovements(c.UserContext(), c.Query("item_code"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}

// GenerateSnapshot persists the ending stock of a day
// POST /api/v1/stock/snapshots?date=YYYY-MM-DD
func (h *StockHandler) GenerateSnapshot(c *fiber.Ctx) error {
	today := h.service.Today()
	day, err := queryDay(c, "date", today)
	if err != nil {
		return respondError(c, err)
	}
	if day.After(today) {
		return respondError(c, service.ErrFutureDate)
	}

	snapshots, err := h.service.GenerateSnapshot(c.UserContext(), day)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Snapshot generated", "count": len(snapshots), "data": snapshots})
}
