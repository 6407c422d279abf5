package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"voicepage/internal/domain/message"
)

const (
	user = "me"
	// plain text shorter than this is compared against the html rendition
	minPlainRunes = 300
)

// MessageRepository implements domain message.Repository backed by Gmail API.
type MessageRepository struct {
	srv *gmail.Service
}

func NewMessageRepository(srv *gmail.Service) *MessageRepository {
	return &MessageRepository{srv: srv}
}

// GetByID fetches Gmail message, aggregates plain text / html to EmailMessage Body.
func (r *MessageRepository) GetByID(ctx context.Context, id message.ID) (*message.EmailMessage, error) {
	log.Printf("[gmail] GetByID: %s", id)
	gm, err := r.srv.Users.Messages.Get(user, string(id)).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, wrapNotFound(err, "gmail get message %s", id)
	}
	out := &message.EmailMessage{ID: id, Body: collectMessageText(gm)}
	if gm.Payload != nil {
		out.Subject = header(gm.Payload, "Subject")
		out.From = header(gm.Payload, "From")
	}
	return out, nil
}

// List returns summaries of INBOX messages matching query.
func (r *MessageRepository) List(ctx context.Context, query string, max int64) ([]message.Summary, error) {
	call := r.srv.Users.Messages.List(user).MaxResults(max).LabelIds("INBOX").Context(ctx)
	if strings.TrimSpace(query) != "" {
		call = call.Q(query)
	}
	res, err := call.Do()
	if err != nil {
		return nil, upstream(err, "gmail list messages")
	}

	summaries := make([]message.Summary, 0, len(res.Messages))
	for _, m := range res.Messages {
		msg, err := r.srv.Users.Messages.Get(user, m.Id).Format("metadata").
			MetadataHeaders("Subject", "From").Context(ctx).Do()
		if err != nil {
			log.Printf("[gmail] failed to get message %s: %v", m.Id, err)
			continue
		}
		subj := "(no subject)"
		from := ""
		if msg.Payload != nil {
			if s := header(msg.Payload, "Subject"); s != "" {
				subj = s
			}
			from = header(msg.Payload, "From")
		}
		summaries = append(summaries, message.Summary{
			ID:           message.ID(m.Id),
			Subject:      subj,
			From:         from,
			Snippet:      msg.Snippet,
			InternalDate: msg.InternalDate,
		})
	}
	return summaries, nil
}

// LatestID returns the newest INBOX message id matching query.
func (r *MessageRepository) LatestID(ctx context.Context, query string) (message.ID, error) {
	call := r.srv.Users.Messages.List(user).LabelIds("INBOX").MaxResults(1).Context(ctx)
	if strings.TrimSpace(query) != "" {
		call = call.Q(query)
	}
	res, err := call.Do()
	if err != nil {
		return "", upstream(err, "gmail list messages")
	}
	if res == nil || len(res.Messages) == 0 {
		return "", errors.Wrapf(message.ErrNotFound, "no messages for query %q", query)
	}
	return message.ID(res.Messages[0].Id), nil
}

func wrapNotFound(err error, format string, args ...any) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return errors.Wrapf(message.ErrNotFound, format, args...)
	}
	return upstream(err, format, args...)
}

// upstream keeps the API's error text but classifies it as message.ErrUpstream.
func upstream(err error, format string, args ...any) error {
	return errors.Wrapf(message.ErrUpstream, "%s: %v", fmt.Sprintf(format, args...), err)
}

func header(p *gmail.MessagePart, name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// decodePart decodes a body part. Gmail uses URL-safe base64, usually padded
// but not always.
func decodePart(data string) (string, bool) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		b, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", false
		}
	}
	return strings.ToValidUTF8(string(b), ""), true
}

func extractHTML(p *gmail.MessagePart) string {
	if p == nil {
		return ""
	}
	if p.MimeType == "text/html" && p.Body != nil && p.Body.Data != "" {
		if s, ok := decodePart(p.Body.Data); ok {
			return s
		}
	}
	for _, part := range p.Parts {
		if h := extractHTML(part); h != "" {
			return h
		}
	}
	return ""
}

func gatherPlainText(p *gmail.MessagePart, out *[]string) {
	if p == nil {
		return
	}
	if p.MimeType == "text/plain" && p.Body != nil && p.Body.Data != "" {
		if s, ok := decodePart(p.Body.Data); ok {
			*out = append(*out, s)
		}
	}
	for _, part := range p.Parts {
		gatherPlainText(part, out)
	}
}

// htmlToText drops script/style/head and returns the visible text with one
// line per block.
func htmlToText(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return ""
	}
	doc.Find("script, style, head, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// collectMessageText prefers the plain text parts and falls back to the
// html rendition when plain text is short, then to the snippet.
func collectMessageText(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	var plainParts []string
	gatherPlainText(msg.Payload, &plainParts)
	plainText := strings.TrimSpace(strings.Join(plainParts, "\n"))

	if utf8.RuneCountInString(plainText) >= minPlainRunes {
		return plainText
	}

	if html := extractHTML(msg.Payload); html != "" {
		txt := htmlToText(html)
		if utf8.RuneCountInString(txt) > utf8.RuneCountInString(plainText) {
			return txt
		}
	}

	if plainText != "" {
		return plainText
	}
	return msg.Snippet
}
