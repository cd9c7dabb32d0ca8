package handler

import (
	"strings"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ItemHandler struct {
	service service.ItemService
}

func NewItemHandler(s service.ItemService) *ItemHandler {
	return &ItemHandler{service: s}
}

// GetItems lists the catalog
// GET /api/v1/items?category=ACCESSORY
func (h *ItemHandler) GetItems(c *fiber.Ctx) error {
	category := model.ItemCategory(strings.ToUpper(c.Query("category")))
	items, err := h.service.ListItems(c.UserContext(), category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GET /api/v1/items/:code
func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.service.GetItem(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// POST /api/v1/items
func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	var req service.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	item, err := h.service.CreateItem(c.UserContext(), &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Item created", "data": item})
}

// PUT /api/v1/items/:code
func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	var req service.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	item, err := h.service.UpdateItem(c.UserContext(), c.Params("code"), &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Item updated", "data": item})
}
