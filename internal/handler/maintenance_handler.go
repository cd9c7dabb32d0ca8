package handler

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"
	"go-jewelry-pos/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type MaintenanceHandler struct {
	service service.MaintenanceService
	today   func() time.Time
}

func NewMaintenanceHandler(s service.MaintenanceService, today func() time.Time) *MaintenanceHandler {
	return &MaintenanceHandler{service: s, today: today}
}

// Export downloads archival data as a workbook or CSV
// GET /api/v1/maintenance/export?from=&to=&format=xlsx|csv
func (h *MaintenanceHandler) Export(c *fiber.Ctx) error {
	from, to, err := queryRange(c, h.today())
	if err != nil {
		return respondError(c, err)
	}
	format := service.ExportFormat(strings.ToLower(c.Query("format", string(service.FormatXLSX))))

	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), &buf, from, to, format); err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("archive_%s_%s.%s", from.Format(model.DateLayout), to.Format(model.DateLayout), format)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// Archive copies archival data to the configured sinks
// POST /api/v1/maintenance/archive?from=&to=
func (h *MaintenanceHandler) Archive(c *fiber.Ctx) error {
	from, to, err := queryRange(c, h.today())
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.service.Archive(c.UserContext(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Archive completed", "data": result})
}

type purgeRequest struct {
	Before string `json:"before"`
}

// Purge deletes archival data dated before a day
// POST /api/v1/maintenance/purge
func (h *MaintenanceHandler) Purge(c *fiber.Ctx) error {
	var req purgeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	before, err := model.ParseDay(req.Before)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: before must be YYYY-MM-DD", validator.ErrValidation))
	}

	result, err := h.service.Purge(c.UserContext(), before, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Archive purged", "data": result})
}
