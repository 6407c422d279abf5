package handler

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"voicepage/internal/domain/page"
	ucpage "voicepage/internal/usecase/page"
)

type renderRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// PageHandler bundles dependencies for page routes.
type PageHandler struct {
	fromText    *ucpage.RenderFromText
	fromMessage *ucpage.RenderFromMessage // nil when Gmail is not configured
	pages       page.Store
}

func NewPageHandler(fromText *ucpage.RenderFromText, fromMessage *ucpage.RenderFromMessage, pages page.Store) *PageHandler {
	return &PageHandler{fromText: fromText, fromMessage: fromMessage, pages: pages}
}

// Register registers routes to app.
func (h *PageHandler) Register(app *fiber.App) {
	app.Post("/pages", h.create)
	app.Get("/pages/:id", h.show)
	app.Post("/messages/:id/page", h.createFromMessage)
}

func (h *PageHandler) create(c *fiber.Ctx) error {
	var req renderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	out, err := h.fromText.Execute(c.UserContext(), &ucpage.RenderFromTextInput{
		Title: req.Title,
		Text:  req.Text,
		Voice: req.Voice,
	})
	if err != nil {
		return toFiberError(err)
	}
	return respond(c, out)
}

func (h *PageHandler) createFromMessage(c *fiber.Ctx) error {
	if h.fromMessage == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "gmail is not configured")
	}
	id := c.Params("id")
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "id required")
	}
	log.Printf("[handler] page from message id=%s", id)
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	out, err := h.fromMessage.Execute(c.UserContext(), &ucpage.RenderFromMessageInput{
		MessageID:  id,
		LimitChars: limit,
		Voice:      c.Query("voice"),
	})
	if err != nil {
		return toFiberError(err)
	}
	return respond(c, out)
}

func (h *PageHandler) show(c *fiber.Ctx) error {
	id, err := page.ParseID(c.Params("id"))
	if err != nil {
		return toFiberError(err)
	}
	html, err := h.pages.Load(c.UserContext(), id)
	if err != nil {
		return toFiberError(err)
	}
	c.Type("html", "utf-8")
	return c.Send(html)
}

// respond sends the page itself unless the client prefers JSON.
func respond(c *fiber.Ctx, out *ucpage.RenderOutput) error {
	c.Location("/pages/" + string(out.ID))
	c.Status(fiber.StatusCreated)
	if c.Query("format") == "json" || c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return c.JSON(out)
	}
	c.Type("html", "utf-8")
	return c.Send(out.HTML)
}
