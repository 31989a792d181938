package controller

import (
	"io"

	"plant-journal-be/internal/capture"
	"plant-journal-be/internal/dto"
	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICaptureController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type captureController struct {
	manager *capture.Manager
}

func NewCaptureController(manager *capture.Manager) ICaptureController {
	return &captureController{manager: manager}
}

func (c *captureController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/capture/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Start)
	h.Get(":sessionId", c.Show)
	h.Post(":sessionId/cancel", c.Cancel)
	h.Post(":sessionId/retry", c.Retry)
	h.Post(":sessionId/reset", c.Reset)
}

// Start accepts a multipart upload (field "image", optional "category")
// and kicks off an identification attempt. The response carries the
// session id for polling and the initial state.
func (c *captureController) Start(ctx *fiber.Ctx) error {
	ownerId := ctx.Locals("user_id").(string)

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing 'image' file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if len(image) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Empty image upload")
	}

	category := entity.ParseCategory(ctx.FormValue("category"))

	sessionId, w, err := c.manager.Start(ownerId, image, category)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Capture started", dto.StartCaptureResponse{
		SessionId: sessionId.String(),
		State:     dto.NewCaptureStateResponse(w.State()),
	}))
}

func (c *captureController) Show(ctx *fiber.Ctx) error {
	w, err := c.workflow(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Capture state", dto.NewCaptureStateResponse(w.State())))
}

func (c *captureController) Cancel(ctx *fiber.Ctx) error {
	w, err := c.workflow(ctx)
	if err != nil {
		return err
	}
	w.Cancel()
	return ctx.JSON(serverutils.SuccessResponse("Capture cancelled", dto.NewCaptureStateResponse(w.State())))
}

func (c *captureController) Retry(ctx *fiber.Ctx) error {
	w, err := c.workflow(ctx)
	if err != nil {
		return err
	}
	if err := w.Retry(); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Capture retrying", dto.NewCaptureStateResponse(w.State())))
}

func (c *captureController) Reset(ctx *fiber.Ctx) error {
	w, err := c.workflow(ctx)
	if err != nil {
		return err
	}
	w.Reset()
	return ctx.JSON(serverutils.SuccessResponse("Capture reset", dto.NewCaptureStateResponse(w.State())))
}

func (c *captureController) workflow(ctx *fiber.Ctx) (*capture.Workflow, error) {
	ownerId := ctx.Locals("user_id").(string)

	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	w, ok := c.manager.Get(sessionId, ownerId)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Capture session not found")
	}
	return w, nil
}
