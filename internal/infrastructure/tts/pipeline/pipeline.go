// Package pipeline stacks the synthesizer decorators in the order the
// service uses them: cache → chunk → API client.
package pipeline

import (
	"voicepage/internal/config"
	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/tts"
	"voicepage/internal/infrastructure/tts/cache"
	"voicepage/internal/infrastructure/tts/chunk"
)

// Base is an API-backed synthesizer that can switch voices.
type Base interface {
	tts.Synthesizer
	Options() tts.Options
	WithVoice(voice string) tts.Synthesizer
}

// Pipeline is a tts.Synthesizer that keeps voice selection working through
// the decorators.
type Pipeline struct {
	tts.Synthesizer
	base  Base
	cfg   config.TTSConfig
	cache audio.Cache
}

// New builds the stack. c may be nil to disable caching.
func New(base Base, cfg config.TTSConfig, c audio.Cache) *Pipeline {
	var s tts.Synthesizer = chunk.NewSynthesizer(base, cfg.Format(), cfg.MaxChars, cfg.Concurrency)
	if c != nil {
		s = cache.NewSynthesizer(s, c, base.Options())
	}
	return &Pipeline{Synthesizer: s, base: base, cfg: cfg, cache: c}
}

// WithVoice rebuilds the stack around a base speaking with voice.
func (p *Pipeline) WithVoice(voice string) tts.Synthesizer {
	b, ok := p.base.WithVoice(voice).(Base)
	if !ok || b == p.base {
		return p
	}
	return New(b, p.cfg, p.cache)
}

// Options reports the parameters of the underlying API client.
func (p *Pipeline) Options() tts.Options {
	return p.base.Options()
}
