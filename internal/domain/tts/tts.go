package tts

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"voicepage/internal/domain/audio"
)

var (
	ErrEmptyText   = errors.New("text is empty")
	ErrTextTooLong = errors.New("text exceeds synthesizer limit")
	// ErrUpstream marks failures reported by, or on the way to, the speech API.
	ErrUpstream = errors.New("speech service failed")
)

// Audio is raw synthesized voice.
type Audio struct {
	Data   []byte
	Format audio.Format
}

// DataURI returns the audio as an inline data: URI.
func (a *Audio) DataURI() string {
	return audio.DataURI(a.Format, a.Data)
}

// Base64 returns the audio payload as template-safe text.
func (a *Audio) Base64() string {
	return audio.EncodeBase64(a.Data)
}

// Options are the voice parameters a synthesizer was configured with.
type Options struct {
	Model        string
	Voice        string
	Speed        float64
	Format       audio.Format
	Instructions string
}

// Synthesizer converts text to Audio.
// Concrete implementation wraps OpenAI, Google, Azure, etc.
type Synthesizer interface {
	// Synthesize takes text and returns Audio.
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// NormalizeText prepares user text for synthesis: NFC, LF line endings, trimmed.
func NormalizeText(s string) (string, error) {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}
	return s, nil
}
