package page

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"

	"voicepage/internal/domain/message"
)

// RenderFromMessageInput is input DTO.
type RenderFromMessageInput struct {
	MessageID  string
	LimitChars int // 0 means no limit
	Voice      string
}

// RenderFromMessage renders a page for the body of a mail message.
type RenderFromMessage struct {
	repo   message.Repository
	render *RenderFromText
}

func NewRenderFromMessage(repo message.Repository, render *RenderFromText) *RenderFromMessage {
	return &RenderFromMessage{repo: repo, render: render}
}

func (uc *RenderFromMessage) Execute(ctx context.Context, in *RenderFromMessageInput) (*RenderOutput, error) {
	if in.MessageID == "" {
		return nil, errors.New("message id required")
	}
	msg, err := uc.repo.GetByID(ctx, message.ID(in.MessageID))
	if err != nil {
		return nil, err
	}

	text := msg.Body
	if in.LimitChars > 0 && utf8.RuneCountInString(text) > in.LimitChars {
		text = truncateRunes(text, in.LimitChars)
	}
	title := msg.Subject
	if title == "" {
		title = "(no subject)"
	}

	return uc.render.Execute(ctx, &RenderFromTextInput{
		Title:           title,
		Text:            text,
		Voice:           in.Voice,
		SourceMessageID: string(msg.ID),
	})
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n > len(r) {
		return s
	}
	return string(r[:n])
}
