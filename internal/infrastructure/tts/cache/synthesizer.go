// Package cache memoizes synthesized audio so identical requests skip the API.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strconv"

	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/tts"
)

// Synthesizer looks up audio in an audio.Cache before calling next.
// Cache failures are logged and otherwise ignored.
type Synthesizer struct {
	next  tts.Synthesizer
	cache audio.Cache
	opts  tts.Options
}

// NewSynthesizer wraps next. opts must describe how next synthesizes,
// since they are part of the cache key.
func NewSynthesizer(next tts.Synthesizer, c audio.Cache, opts tts.Options) *Synthesizer {
	return &Synthesizer{next: next, cache: c, opts: opts}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*tts.Audio, error) {
	key := Key(s.opts, text)

	data, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Printf("[cache] get %s failed: %v", key[:12], err)
	case ok:
		log.Printf("[cache] hit %s bytes=%d", key[:12], len(data))
		return &tts.Audio{Data: data, Format: s.opts.Format}, nil
	}

	a, err := s.next.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, a.Data); err != nil {
		log.Printf("[cache] set %s failed: %v", key[:12], err)
	}
	return a, nil
}

// Key derives the cache key for text spoken with opts.
func Key(opts tts.Options, text string) string {
	h := sha256.New()
	for _, field := range []string{
		opts.Model,
		opts.Voice,
		strconv.FormatFloat(opts.Speed, 'f', -1, 64),
		string(opts.Format),
		opts.Instructions,
		text,
	} {
		h.Write([]byte(strconv.Itoa(len(field))))
		h.Write([]byte{':'})
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
