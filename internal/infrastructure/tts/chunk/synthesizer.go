// Package chunk splits long text into API-sized pieces and joins the audio.
package chunk

import (
	"context"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/tts"
)

// Synthesizer wraps another synthesizer and fans long text out over it.
type Synthesizer struct {
	next        tts.Synthesizer
	format      audio.Format
	maxChars    int
	concurrency int
}

func NewSynthesizer(next tts.Synthesizer, format audio.Format, maxChars, concurrency int) *Synthesizer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Synthesizer{next: next, format: format, maxChars: maxChars, concurrency: concurrency}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*tts.Audio, error) {
	if s.maxChars <= 0 || utf8.RuneCountInString(text) <= s.maxChars {
		return s.next.Synthesize(ctx, text)
	}
	if !s.format.Concatenable() {
		return nil, errors.Wrapf(tts.ErrTextTooLong, "%d chars in %s (limit %d)",
			utf8.RuneCountInString(text), s.format, s.maxChars)
	}

	var parts []string
	for _, p := range Split(text, s.maxChars) {
		// a run of line breaks can fill a whole window; there is nothing to speak
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, tts.ErrEmptyText
	}
	log.Printf("[tts] split into %d chunks (limit %d chars)", len(parts), s.maxChars)

	results := make([][]byte, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			a, err := s.next.Synthesize(gctx, part)
			if err != nil {
				return errors.Wrapf(err, "chunk %d/%d", i+1, len(parts))
			}
			results[i] = a.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	size := 0
	for _, r := range results {
		size += len(r)
	}
	merged := make([]byte, 0, size)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return &tts.Audio{Data: merged, Format: s.format}, nil
}

// sentenceEnds are the runes after which a chunk may end.
const sentenceEnds = "。．.!?！？\n"

// Split cuts text into pieces of at most maxChars runes, preferring to break
// right after a sentence end and never splitting a rune. Concatenating the
// pieces gives back text.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	remaining := text
	for remaining != "" {
		if utf8.RuneCountInString(remaining) <= maxChars {
			chunks = append(chunks, remaining)
			break
		}

		// byte offset just past the first maxChars runes
		limit := 0
		for n := 0; n < maxChars; n++ {
			_, size := utf8.DecodeRuneInString(remaining[limit:])
			limit += size
		}

		// breaks and spaces at the head of the window belong to the chunk
		// that follows them, not to a chunk of their own
		lead := leadingBlank(remaining[:limit])
		cut := limit
		if lead < limit {
			window := remaining[lead:limit]
			if b := lastBreak(window); b > 0 {
				cut = lead + b
			} else if sp := strings.LastIndexAny(window, " \t"); sp > 0 {
				cut = lead + sp + 1
			}
		}
		chunks = append(chunks, remaining[:cut])
		remaining = remaining[cut:]
	}
	return chunks
}

// leadingBlank returns the byte length of the run of whitespace and sentence
// ends that s starts with.
func leadingBlank(s string) int {
	for i, r := range s {
		if !unicode.IsSpace(r) && !strings.ContainsRune(sentenceEnds, r) {
			return i
		}
	}
	return len(s)
}

// lastBreak returns the byte offset just past the last sentence end in s, or -1.
func lastBreak(s string) int {
	i := strings.LastIndexAny(s, sentenceEnds)
	if i < 0 {
		return -1
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}
