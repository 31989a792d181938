package serverutils

import (
	"errors"

	"plant-journal-be/internal/capture"
	"plant-journal-be/internal/service"
	"plant-journal-be/internal/storage"
	"plant-journal-be/pkg/vision"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors to HTTP statuses so controllers
// can just return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, message := classify(err)
		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}

func classify(err error) (int, string) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusBadRequest, validationErr.Message
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, "Discovery not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrEmailTaken):
		return fiber.StatusConflict, service.ErrEmailTaken.Error()
	case errors.Is(err, capture.ErrBusy):
		return fiber.StatusConflict, capture.ErrBusy.Error()
	case errors.Is(err, capture.ErrNotRetryable):
		return fiber.StatusConflict, capture.ErrNotRetryable.Error()
	case errors.Is(err, vision.ErrUnidentifiable):
		return fiber.StatusUnprocessableEntity, "No plant, flower or insect could be identified in this image."
	}

	var identErr *vision.IdentificationError
	if errors.As(err, &identErr) {
		if identErr.Kind == vision.KindRateLimit {
			return fiber.StatusTooManyRequests, identErr.Message
		}
		return fiber.StatusBadGateway, identErr.Message
	}

	var storageErr *storage.StorageError
	if errors.As(err, &storageErr) {
		return fiber.StatusInternalServerError, "Image storage failed"
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, "Internal server error"
}
