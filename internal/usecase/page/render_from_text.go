package page

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"voicepage/internal/domain/audio"
	domainpage "voicepage/internal/domain/page"
	"voicepage/internal/domain/tts"
)

// Renderer turns a page into HTML.
type Renderer interface {
	RenderBytes(p *domainpage.Page) ([]byte, error)
}

// VoiceSelector is implemented by synthesizers that can speak with another voice.
type VoiceSelector interface {
	WithVoice(voice string) tts.Synthesizer
}

// RenderFromTextInput is input DTO.
type RenderFromTextInput struct {
	Title           string
	Text            string
	Voice           string // optional override
	SourceMessageID string
}

// RenderOutput is output DTO shared by the page use cases.
type RenderOutput struct {
	ID          domainpage.ID    `json:"id"`
	Path        string           `json:"path"`
	AudioPath   string           `json:"audioPath,omitempty"`
	AudioBase64 string           `json:"audioBase64"`
	MIMEType    string           `json:"mimeType"`
	HTML        []byte           `json:"-"`
	Page        *domainpage.Page `json:"-"`
}

// RenderFromText implements usecase.UseCase: text → speech → HTML page.
type RenderFromText struct {
	synthesizer tts.Synthesizer
	renderer    Renderer
	pages       domainpage.Store
	audios      audio.Store // optional
	now         func() time.Time
}

func NewRenderFromText(synth tts.Synthesizer, r Renderer, pages domainpage.Store, audios audio.Store) *RenderFromText {
	return &RenderFromText{synthesizer: synth, renderer: r, pages: pages, audios: audios, now: time.Now}
}

// Execute synthesizes in.Text, renders the page with the audio embedded and stores it.
func (uc *RenderFromText) Execute(ctx context.Context, in *RenderFromTextInput) (*RenderOutput, error) {
	text, err := tts.NormalizeText(in.Text)
	if err != nil {
		return nil, err
	}

	synth := uc.synthesizer
	if in.Voice != "" {
		vs, ok := synth.(VoiceSelector)
		if !ok {
			return nil, errors.Errorf("voice %q requested but synthesizer has a fixed voice", in.Voice)
		}
		synth = vs.WithVoice(in.Voice)
	}

	a, err := synth.Synthesize(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "synthesize")
	}

	p := &domainpage.Page{
		ID:              domainpage.NewID(),
		Title:           in.Title,
		Text:            text,
		Audio:           a,
		CreatedAt:       uc.now(),
		SourceMessageID: in.SourceMessageID,
	}
	html, err := uc.renderer.RenderBytes(p)
	if err != nil {
		return nil, errors.Wrap(err, "render page")
	}

	out := &RenderOutput{
		ID:          p.ID,
		AudioBase64: a.Base64(),
		MIMEType:    a.Format.MIMEType(),
		HTML:        html,
		Page:        p,
	}
	// the page goes last so a stored page always has its audio file
	if uc.audios != nil {
		ap, err := uc.audios.Save(a.Data, string(p.ID), a.Format)
		if err != nil {
			return nil, errors.Wrap(err, "save audio")
		}
		out.AudioPath = string(ap)
	}
	if out.Path, err = uc.pages.Save(ctx, p.ID, html); err != nil {
		return nil, errors.Wrap(err, "save page")
	}
	log.Printf("[page] rendered id=%s audio=%dB html=%dB", p.ID, len(a.Data), len(html))
	return out, nil
}
