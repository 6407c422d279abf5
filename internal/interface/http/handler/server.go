package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers are the route groups mounted by NewApp.
type Handlers struct {
	Pages    *PageHandler
	TTS      *TTSHandler
	Messages *MessageListHandler
	Auth     *AuthHandler
}

// NewApp builds the Fiber app with every route registered.
func NewApp(h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "voicepage",
		ErrorHandler: ErrorHandler,
		// pages embed whole audio files
		BodyLimit: 16 * 1024 * 1024,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	RegisterEncodeRoutes(app)
	if h.Pages != nil {
		h.Pages.Register(app)
	}
	if h.TTS != nil {
		h.TTS.Register(app)
	}
	if h.Messages != nil {
		h.Messages.Register(app)
	}
	if h.Auth != nil {
		h.Auth.Register(app)
	}
	return app
}
