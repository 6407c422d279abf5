package audio

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrInvalidBase64 is returned when a payload is not standard padded base64.
var ErrInvalidBase64 = errors.New("invalid base64 payload")

// ErrInvalidDataURI is returned by ParseDataURI for malformed URIs.
var ErrInvalidDataURI = errors.New("invalid data uri")

// EncodeBase64 turns arbitrary bytes into text that any template engine can
// take as a string: the standard alphabet, padded.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 is the strict inverse of EncodeBase64. Line breaks, which the
// standard decoder skips, are rejected too.
func DecodeBase64(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, errors.Wrap(ErrInvalidBase64, "line break in input")
	}
	data, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBase64, err.Error())
	}
	return data, nil
}

// IsTemplateSafe reports whether s is valid UTF-8 made only of base64 alphabet characters.
func IsTemplateSafe(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '=':
		default:
			return false
		}
	}
	return true
}

const dataURIPrefix = "data:"

// DataURI builds data:<mime>;base64,<payload> for embedding audio inline.
func DataURI(format Format, data []byte) string {
	var b strings.Builder
	enc := EncodeBase64(data)
	mime := format.MIMEType()
	b.Grow(len(dataURIPrefix) + len(mime) + len(";base64,") + len(enc))
	b.WriteString(dataURIPrefix)
	b.WriteString(mime)
	b.WriteString(";base64,")
	b.WriteString(enc)
	return b.String()
}

// ParseDataURI reverses DataURI. Only base64 data URIs with a known audio
// media type are accepted.
func ParseDataURI(uri string) (Format, []byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return "", nil, errors.Wrap(ErrInvalidDataURI, "missing data: scheme")
	}
	meta, payload, ok := strings.Cut(uri[len(dataURIPrefix):], ",")
	if !ok {
		return "", nil, errors.Wrap(ErrInvalidDataURI, "missing payload separator")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, errors.Wrap(ErrInvalidDataURI, "payload is not base64")
	}
	format, err := ParseFormat(mime)
	if err != nil {
		return "", nil, err
	}
	data, err := DecodeBase64(payload)
	if err != nil {
		return "", nil, err
	}
	return format, data, nil
}
