// Package render turns a page into a self-contained HTML document with the
// audio embedded as a base64 data URI.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"voicepage/internal/domain/audio"
	"voicepage/internal/domain/page"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer executes the page template.
type Renderer struct {
	tmpl *template.Template
	lang string
}

// New parses the embedded templates. lang is written to <html lang>.
func New(lang string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	if lang == "" {
		lang = "en"
	}
	return &Renderer{tmpl: tmpl, lang: lang}, nil
}

type view struct {
	Lang            string
	ID              page.ID
	Title           string
	Paragraphs      []string
	AudioSrc        template.URL
	MIMEType        string
	FileName        string
	Size            string
	SourceMessageID string
	CreatedAt       time.Time
}

// Render writes p as HTML to w.
func (r *Renderer) Render(w io.Writer, p *page.Page) error {
	if p == nil || p.Audio == nil {
		return errors.New("render: page has no audio")
	}
	if !p.Audio.Format.Valid() {
		return errors.Wrapf(audio.ErrUnknownFormat, "render: %q", p.Audio.Format)
	}

	uri := audio.DataURI(p.Audio.Format, p.Audio.Data)
	// html/template rewrites data: URLs to "#ZgotmplZ" unless they are marked
	// as trusted. The payload is our own base64 output, so it can be.
	if !audio.IsTemplateSafe(uri[strings.IndexByte(uri, ',')+1:]) {
		return errors.New("render: encoded audio is not template safe")
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Untitled"
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	v := view{
		Lang:            r.lang,
		ID:              p.ID,
		Title:           title,
		Paragraphs:      Paragraphs(p.Text),
		AudioSrc:        template.URL(uri),
		MIMEType:        p.Audio.Format.MIMEType(),
		FileName:        downloadName(p),
		Size:            humanSize(len(p.Audio.Data)),
		SourceMessageID: p.SourceMessageID,
		CreatedAt:       createdAt,
	}
	return errors.Wrap(r.tmpl.ExecuteTemplate(w, "page.html.tmpl", v), "execute page template")
}

// RenderBytes is Render into a fresh buffer.
func (r *Renderer) RenderBytes(p *page.Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Paragraphs splits text on blank lines and joins wrapped lines with spaces.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		lines := strings.Fields(strings.ReplaceAll(block, "\n", " "))
		if len(lines) == 0 {
			continue
		}
		out = append(out, strings.Join(lines, " "))
	}
	return out
}

func downloadName(p *page.Page) string {
	name := string(p.ID)
	if name == "" {
		name = "audio"
	}
	return name + p.Audio.Format.Ext()
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
