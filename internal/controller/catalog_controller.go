// FILE: internal/controller/catalog_controller.go
package controller

import (
	"presto-copilot-be/internal/pkg/serverutils"
	"presto-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	GetStores(ctx *fiber.Ctx) error
	GetStoreDocuments(ctx *fiber.Ctx) error
	GetModels(ctx *fiber.Ctx) error
}

type catalogController struct {
	storeService service.IStoreService
}

func NewCatalogController(storeService service.IStoreService) ICatalogController {
	return &catalogController{storeService: storeService}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Get("/stores", c.GetStores)
	h.Get("/stores/:key/documents", c.GetStoreDocuments)
	h.Get("/models", c.GetModels)
}

func (c *catalogController) GetStores(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get store catalog", c.storeService.Catalog()))
}

func (c *catalogController) GetStoreDocuments(ctx *fiber.Ctx) error {
	storeKey := ctx.Params("key")

	res, err := c.storeService.Documents(ctx.Context(), storeKey)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get store documents", res))
}

func (c *catalogController) GetModels(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get model catalog", c.storeService.Models()))
}
