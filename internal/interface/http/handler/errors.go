package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/message"
	"voicepage/internal/domain/page"
	"voicepage/internal/domain/tts"
)

// toFiberError maps domain errors to HTTP statuses.
func toFiberError(err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, tts.ErrEmptyText),
		errors.Is(err, audio.ErrInvalidBase64),
		errors.Is(err, audio.ErrInvalidDataURI),
		errors.Is(err, audio.ErrUnknownFormat),
		errors.Is(err, page.ErrInvalidID):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, tts.ErrTextTooLong):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, page.ErrNotFound), errors.Is(err, message.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, message.ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, tts.ErrUpstream), errors.Is(err, message.ErrUpstream):
		log.Printf("[handler] upstream error: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	log.Printf("[handler] internal error: %v", err)
	return fiber.ErrInternalServerError
}

// ErrorHandler renders errors as JSON {"error": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	fe, ok := toFiberError(err).(*fiber.Error)
	if !ok {
		fe = fiber.ErrInternalServerError
	}
	return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
}
