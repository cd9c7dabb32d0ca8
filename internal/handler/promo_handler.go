package handler

import (
	"time"

	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PromoHandler struct {
	service service.PromoService
}

func NewPromoHandler(s service.PromoService) *PromoHandler {
	return &PromoHandler{service: s}
}

// Screen returns the slides the in-store display should cycle through now.
// Public so the display needs no login.
// GET /api/v1/promo/screen
func (h *PromoHandler) Screen(c *fiber.Ctx) error {
	slides, err := h.service.Screen(c.UserContext(), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slides)
}

// GET /api/v1/promo/slides
func (h *PromoHandler) List(c *fiber.Ctx) error {
	slides, err := h.service.ListSlides(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slides)
}

// POST /api/v1/promo/slides
func (h *PromoHandler) Create(c *fiber.Ctx) error {
	var req service.PromoSlideRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	slide, err := h.service.CreateSlide(c.UserContext(), &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Slide created", "data": slide})
}

// PUT /api/v1/promo/slides/:id
func (h *PromoHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.PromoSlideRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	slide, err := h.service.UpdateSlide(c.UserContext(), id, &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Slide updated", "data": slide})
}

// DELETE /api/v1/promo/slides/:id
func (h *PromoHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.DeleteSlide(c.UserContext(), id, actorFromCtx(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Slide deleted"})
}

type reorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// PUT /api/v1/promo/slides/order
func (h *PromoHandler) Reorder(c *fiber.Ctx) error {
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	slides, err := h.service.Reorder(c.UserContext(), req.IDs, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Slides reordered", "data": slides})
}
