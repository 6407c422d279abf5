package handler

import (
	"github.com/gofiber/fiber/v2"

	"voicepage/internal/domain/tts"
	ucpage "voicepage/internal/usecase/page"
)

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// TTSHandler exposes raw synthesis with the audio returned as base64 text.
type TTSHandler struct {
	synth tts.Synthesizer
}

func NewTTSHandler(synth tts.Synthesizer) *TTSHandler {
	return &TTSHandler{synth: synth}
}

func (h *TTSHandler) Register(app *fiber.App) {
	app.Post("/tts", h.synthesize)
}

func (h *TTSHandler) synthesize(c *fiber.Ctx) error {
	var req ttsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	text, err := tts.NormalizeText(req.Text)
	if err != nil {
		return toFiberError(err)
	}

	synth := h.synth
	if req.Voice != "" {
		vs, ok := synth.(ucpage.VoiceSelector)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "voice selection is not supported")
		}
		synth = vs.WithVoice(req.Voice)
	}

	a, err := synth.Synthesize(c.UserContext(), text)
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(fiber.Map{
		"audioContent": a.Base64(),
		"format":       a.Format,
		"mimeType":     a.Format.MIMEType(),
	})
}
