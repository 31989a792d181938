package controller

import (
	"strings"

	"plant-journal-be/internal/dto"
	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/journal"
	"plant-journal-be/internal/pkg/serverutils"
	"plant-journal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IJournalController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateCategory(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	DeleteAll(ctx *fiber.Ctx) error
}

type journalController struct {
	discoveryService service.IDiscoveryService
}

func NewJournalController(discoveryService service.IDiscoveryService) IJournalController {
	return &journalController{discoveryService: discoveryService}
}

func (c *journalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/journal/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Index)
	h.Get(":id", c.Show)
	h.Patch(":id/category", c.UpdateCategory)
	h.Delete(":id", c.Delete)
	h.Delete("", c.DeleteAll)
}

// Index lists the owner's discoveries, filtered and sorted by the same
// projection the live websocket view uses, so a poll and a push never
// disagree.
func (c *journalController) Index(ctx *fiber.Ctx) error {
	ownerId := ctx.Locals("user_id").(string)

	records, err := c.discoveryService.List(ctx.Context(), ownerId)
	if err != nil {
		return err
	}

	projected := journal.Project(records,
		ctx.Query("q"),
		filterCategory(ctx.Query("category")),
		journal.ParseSortOption(ctx.Query("sort")),
	)

	return ctx.JSON(serverutils.SuccessResponse("Journal entries", dto.NewDiscoveryResponses(projected)))
}

func (c *journalController) Show(ctx *fiber.Ctx) error {
	ownerId := ctx.Locals("user_id").(string)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid discovery id")
	}

	discovery, err := c.discoveryService.Get(ctx.Context(), ownerId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Discovery detail", dto.NewDiscoveryResponse(discovery)))
}

func (c *journalController) UpdateCategory(ctx *fiber.Ctx) error {
	ownerId := ctx.Locals("user_id").(string)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid discovery id")
	}

	var req dto.UpdateCategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	discovery, err := c.discoveryService.UpdateCategory(ctx.Context(), ownerId, id, entity.ParseCategory(req.Category))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Category updated", dto.NewDiscoveryResponse(discovery)))
}

func (c *journalController) Delete(ctx *fiber.Ctx) error {
	ownerId := ctx.Locals("user_id").(string)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid discovery id")
	}

	if err := c.discoveryService.Delete(ctx.Context(), ownerId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Discovery deleted", nil))
}

func (c *journalController) DeleteAll(ctx *fiber.Ctx) error {
	ownerId := ctx.Locals("user_id").(string)

	if err := c.discoveryService.DeleteAll(ctx.Context(), ownerId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Journal cleared", nil))
}

// filterCategory treats empty and "All" as no filter.
func filterCategory(s string) entity.Category {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, string(entity.CategoryAll)) {
		return entity.CategoryAll
	}
	return entity.ParseCategory(trimmed)
}
