package openai

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkg/errors"

	"voicepage/internal/config"
	"voicepage/internal/domain/tts"
)

const defaultTimeout = 90 * time.Second

// Synthesizer implements tts.Synthesizer using the OpenAI speech endpoint.
type Synthesizer struct {
	client sdk.Client
	opts   tts.Options
}

// NewSynthesizer creates OpenAI TTS synthesizer. baseURL may be empty.
func NewSynthesizer(apiKey, baseURL string, cfg config.TTSConfig, extra ...option.RequestOption) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, extra...)

	return &Synthesizer{
		client: sdk.NewClient(reqOpts...),
		opts: tts.Options{
			Model:        cfg.Model,
			Voice:        cfg.Voice,
			Speed:        cfg.Speed,
			Format:       cfg.Format(),
			Instructions: cfg.Instructions,
		},
	}, nil
}

// Options returns the voice parameters used for every request.
func (s *Synthesizer) Options() tts.Options {
	return s.opts
}

// WithVoice returns a copy of s speaking with voice. An empty voice returns s.
func (s *Synthesizer) WithVoice(voice string) tts.Synthesizer {
	if voice == "" || voice == s.opts.Voice {
		return s
	}
	cp := *s
	cp.opts.Voice = voice
	return &cp
}

// Synthesize converts text to audio bytes in the configured format.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*tts.Audio, error) {
	if text == "" {
		return nil, tts.ErrEmptyText
	}

	params := sdk.AudioSpeechNewParams{
		Input:          text,
		Model:          sdk.SpeechModel(s.opts.Model),
		Voice:          sdk.AudioSpeechNewParamsVoice(s.opts.Voice),
		ResponseFormat: sdk.AudioSpeechNewParamsResponseFormat(s.opts.Format),
		Speed:          sdk.Float(s.opts.Speed),
	}
	if s.opts.Instructions != "" {
		params.Instructions = sdk.String(s.opts.Instructions)
	}

	log.Printf("[tts] synthesizing model=%s voice=%s format=%s chars=%d",
		s.opts.Model, s.opts.Voice, s.opts.Format, utf8.RuneCountInString(text))
	start := time.Now()

	// adopt timeout from ctx or fall back to 90s
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return nil, errors.Wrapf(tts.ErrUpstream, "openai error %d: %s", apiErr.StatusCode, strings.TrimSpace(apiErr.Message))
		}
		return nil, errors.Wrapf(tts.ErrUpstream, "openai speech request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, errors.Wrapf(tts.ErrUpstream, "openai error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read speech response")
	}

	log.Printf("[tts] done bytes=%d elapsed=%.2fs", len(data), time.Since(start).Seconds())
	return &tts.Audio{Data: data, Format: s.opts.Format}, nil
}
