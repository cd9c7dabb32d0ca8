package handler

import (
	"strings"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BuybackHandler struct {
	service service.BuybackService
}

func NewBuybackHandler(s service.BuybackService) *BuybackHandler {
	return &BuybackHandler{service: s}
}

// Quote prices a piece without recording anything
// POST /api/v1/buybacks/quote
func (h *BuybackHandler) Quote(c *fiber.Ctx) error {
	var req service.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	quote, err := h.service.Quote(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

// POST /api/v1/buybacks
func (h *BuybackHandler) Record(c *fiber.Ctx) error {
	var req service.RecordBuybackRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	buyback, err := h.service.Record(c.UserContext(), &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Buyback recorded", "data": buyback})
}

// GET /api/v1/buybacks?from=&to=
func (h *BuybackHandler) List(c *fiber.Ctx) error {
	from, to, err := queryRange(c, h.service.Today())
	if err != nil {
		return respondError(c, err)
	}

	buybacks, err := h.service.List(c.UserContext(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(buybacks)
}

// GET /api/v1/buybacks/rates
func (h *BuybackHandler) Rates(c *fiber.Ctx) error {
	rates, err := h.service.Rates(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rates)
}

// PUT /api/v1/buybacks/rates/:grade
func (h *BuybackHandler) UpdateRate(c *fiber.Ctx) error {
	var req service.UpdateRateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	grade := model.Grade(strings.ToUpper(c.Params("grade")))
	rate, err := h.service.UpdateRate(c.UserContext(), grade, &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Percentage updated", "data": rate})
}

// GET /api/v1/gold-prices?date=
func (h *BuybackHandler) GoldPrices(c *fiber.Ctx) error {
	day, err := queryDay(c, "date", h.service.Today())
	if err != nil {
		return respondError(c, err)
	}

	prices, err := h.service.GoldPrices(c.UserContext(), day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(prices)
}

// GET /api/v1/gold-prices/:purity/history?from=&to=
func (h *BuybackHandler) GoldPriceHistory(c *fiber.Ctx) error {
	today := h.service.Today()
	from, err := queryDay(c, "from", today.AddDate(0, 0, -30))
	if err != nil {
		return respondError(c, err)
	}
	to, err := queryDay(c, "to", today)
	if err != nil {
		return respondError(c, err)
	}

	prices, err := h.service.GoldPriceHistory(c.UserContext(), c.Params("purity"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(prices)
}

// POST /api/v1/gold-prices
func (h *BuybackHandler) SetGoldPrice(c *fiber.Ctx) error {
	var req service.SetGoldPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	price, err := h.service.SetGoldPrice(c.UserContext(), &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Gold price saved", "data": price})
}

// POST /api/v1/gold-prices/refresh
func (h *BuybackHandler) RefreshGoldPrices(c *fiber.Ctx) error {
	n, err := h.service.RefreshGoldPrices(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Gold prices refreshed", "count": n})
}
