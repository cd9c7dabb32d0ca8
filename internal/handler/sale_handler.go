package handler

import (
	"strings"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/receipt"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

func (h *SaleHandler) create(c *fiber.Ctx, record func(*service.CreateSaleRequest) (*model.Sale, error)) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	sale, err := record(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

// POST /api/v1/sales/accessory
func (h *SaleHandler) CreateAccessorySale(c *fiber.Ctx) error {
	return h.create(c, func(req *service.CreateSaleRequest) (*model.Sale, error) {
		return h.service.RecordAccessorySale(c.UserContext(), req, actorFromCtx(c))
	})
}

// POST /api/v1/sales/box
func (h *SaleHandler) CreateBoxSale(c *fiber.Ctx) error {
	return h.create(c, func(req *service.CreateSaleRequest) (*model.Sale, error) {
		return h.service.RecordBoxSale(c.UserContext(), req, actorFromCtx(c))
	})
}

// POST /api/v1/sales/manual
func (h *SaleHandler) CreateManualSale(c *fiber.Ctx) error {
	return h.create(c, func(req *service.CreateSaleRequest) (*model.Sale, error) {
		return h.service.RecordManualSale(c.UserContext(), req, actorFromCtx(c))
	})
}

// GetSales lists sales, newest first
// GET /api/v1/sales?from=&to=&type=&status=&limit=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	var filter repository.SaleFilter
	var err error
	if filter.From, err = queryDay(c, "from", filter.From); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = queryDay(c, "to", filter.To); err != nil {
		return respondError(c, err)
	}
	filter.Type = model.SaleType(strings.ToUpper(c.Query("type")))
	filter.Status = model.SaleStatus(strings.ToUpper(c.Query("status")))
	filter.Limit = c.QueryInt("limit", 0)

	sales, err := h.service.ListSales(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales)
}

// GET /api/v1/sales/outstanding
func (h *SaleHandler) GetOutstanding(c *fiber.Ctx) error {
	sales, err := h.service.OutstandingDownPayments(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	var remaining int64
	for _, s := range sales {
		remaining += s.Remaining
	}
	return c.JSON(fiber.Map{"remaining_total": remaining, "data": sales})
}

// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// SettleDownPayment takes a payment against an open DP
// POST /api/v1/sales/:id/payments
func (h *SaleHandler) SettleDownPayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.SettlePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	sale, err := h.service.SettleDownPayment(c.UserContext(), id, &req, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment recorded", "data": sale})
}

type voidSaleRequest struct {
	Reason string `json:"reason"`
}

// POST /api/v1/sales/:id/void
func (h *SaleHandler) VoidSale(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req voidSaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidJSON(c)
		}
	}

	sale, err := h.service.VoidSale(c.UserContext(), id, req.Reason, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale voided", "data": sale})
}

// GET /api/v1/sales/:id/receipt
func (h *SaleHandler) GetReceipt(c *fiber.Ctx) error {
	return h.document(c, receipt.KindReceipt)
}

// GET /api/v1/sales/:id/invoice
func (h *SaleHandler) GetInvoice(c *fiber.Ctx) error {
	return h.document(c, receipt.KindInvoice)
}

func (h *SaleHandler) document(c *fiber.Ctx, kind receipt.Kind) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	html, err := h.service.RenderDocument(c.UserContext(), id, kind)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(html)
}
