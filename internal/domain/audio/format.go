package audio

import (
	"strings"

	"github.com/pkg/errors"
)

// Format is an audio container/codec name as accepted by the TTS API.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatOpus Format = "opus"
	FormatAAC  Format = "aac"
	FormatFLAC Format = "flac"
	FormatWAV  Format = "wav"
	FormatPCM  Format = "pcm"
)

// ErrUnknownFormat is returned for formats outside the supported set.
var ErrUnknownFormat = errors.New("unknown audio format")

var mimeTypes = map[Format]string{
	FormatMP3:  "audio/mpeg",
	FormatOpus: "audio/ogg",
	FormatAAC:  "audio/aac",
	FormatFLAC: "audio/flac",
	FormatWAV:  "audio/wav",
	FormatPCM:  "audio/L16",
}

// ParseFormat accepts a format name or one of the MIME types above.
// An empty string selects mp3.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatMP3, nil
	}
	if _, ok := mimeTypes[Format(s)]; ok {
		return Format(s), nil
	}
	// MIME parameters such as audio/L16;rate=24000 are ignored.
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	for f, m := range mimeTypes {
		if strings.ToLower(m) == s {
			return f, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// MIMEType returns the media type used in data URIs and HTTP responses.
func (f Format) MIMEType() string {
	if m, ok := mimeTypes[f]; ok {
		return m
	}
	return "application/octet-stream"
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string {
	if _, ok := mimeTypes[f]; !ok {
		return ".bin"
	}
	return "." + string(f)
}

// Concatenable reports whether two encoded streams of this format can be
// joined byte-wise and still play back as one stream.
func (f Format) Concatenable() bool {
	switch f {
	case FormatMP3, FormatAAC, FormatPCM:
		return true
	}
	return false
}

func (f Format) Valid() bool {
	_, ok := mimeTypes[f]
	return ok
}
