// FILE: internal/controller/admin_controller.go
package controller

import (
	"strconv"

	"presto-copilot-be/internal/pkg/logger"
	"presto-copilot-be/internal/pkg/serverutils"
	"presto-copilot-be/pkg/admin/usage"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetUsage(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	tracker   *usage.Tracker
	logReader logger.LogReader
}

func NewAdminController(tracker *usage.Tracker, logReader logger.LogReader) IAdminController {
	return &adminController{
		tracker:   tracker,
		logReader: logReader,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.AdminJwtMiddleware)
	h.Get("/usage", c.GetUsage)
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

// GetUsage returns the per-store and per-model query counters since startup.
func (c *adminController) GetUsage(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Query usage", c.tracker.Snapshot()))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))
	level := ctx.Query("level", "")

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	logs, err := c.logReader.GetLogs(level, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	logId := ctx.Params("id") // Log ID is a string (MD5 hash), not UUID

	l, err := c.logReader.GetLogById(logId)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Log not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}
