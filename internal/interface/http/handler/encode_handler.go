package handler

import (
	"github.com/gofiber/fiber/v2"

	"voicepage/internal/domain/audio"
)

type decodeRequest struct {
	Data    string `json:"data"`
	DataURI string `json:"dataUri"`
}

// RegisterEncodeRoutes exposes the base64 codec used for embedding.
//
//	POST /encode  raw body → {"data": base64, "dataUri": ...}
//	POST /decode  {"data"} or {"dataUri"} → raw bytes
func RegisterEncodeRoutes(app *fiber.App) {
	app.Post("/encode", encodeHandler)
	app.Post("/decode", decodeHandler)
}

func encodeHandler(c *fiber.Ctx) error {
	body := c.Body()
	res := fiber.Map{"data": audio.EncodeBase64(body)}
	if f := c.Query("format"); f != "" {
		format, err := audio.ParseFormat(f)
		if err != nil {
			return toFiberError(err)
		}
		res["dataUri"] = audio.DataURI(format, body)
	}
	return c.JSON(res)
}

func decodeHandler(c *fiber.Ctx) error {
	var req decodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if req.DataURI != "" {
		format, data, err := audio.ParseDataURI(req.DataURI)
		if err != nil {
			return toFiberError(err)
		}
		c.Set(fiber.HeaderContentType, format.MIMEType())
		return c.Send(data)
	}
	data, err := audio.DecodeBase64(req.Data)
	if err != nil {
		return toFiberError(err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}
