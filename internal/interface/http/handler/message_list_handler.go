package handler

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"voicepage/internal/domain/message"
)

// MessageListHandler lists candidate messages from the text source.
type MessageListHandler struct {
	repo message.Repository // nil when Gmail is not configured
}

func NewMessageListHandler(repo message.Repository) *MessageListHandler {
	return &MessageListHandler{repo: repo}
}

// Register sets up /messages endpoints for listing.
func (h *MessageListHandler) Register(app *fiber.App) {
	app.Get("/messages", h.list)
	app.Get("/messages/latest", h.latest)
}

func (h *MessageListHandler) list(c *fiber.Ctx) error {
	if h.repo == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "gmail is not configured")
	}
	max := int64(5)
	if m := c.Query("max"); m != "" {
		if v, err := strconv.ParseInt(m, 10, 64); err == nil && v > 0 && v <= 100 {
			max = v
		}
	}
	q := c.Query("q")
	log.Printf("[handler] list messages: max=%d q=%s", max, q)

	summaries, err := h.repo.List(c.UserContext(), q, max)
	if err != nil {
		return toFiberError(err)
	}
	if summaries == nil {
		summaries = []message.Summary{}
	}
	return c.JSON(fiber.Map{"messages": summaries})
}

func (h *MessageListHandler) latest(c *fiber.Ctx) error {
	if h.repo == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "gmail is not configured")
	}
	id, err := h.repo.LatestID(c.UserContext(), c.Query("q"))
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(fiber.Map{"id": id})
}
