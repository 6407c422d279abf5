package page

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"voicepage/internal/domain/tts"
)

var (
	ErrNotFound  = errors.New("page not found")
	ErrInvalidID = errors.New("invalid page id")
)

// ID identifies a rendered page. It is always a UUID.
type ID string

// NewID returns a fresh random page id.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates s as a page id.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidID, "%q", s)
	}
	return ID(u.String()), nil
}

// Page is the content of one rendered document: a text and its spoken audio.
type Page struct {
	ID              ID
	Title           string
	Text            string
	Audio           *tts.Audio
	CreatedAt       time.Time
	SourceMessageID string
}

// Store persists rendered HTML documents.
type Store interface {
	Save(ctx context.Context, id ID, html []byte) (string, error)
	Load(ctx context.Context, id ID) ([]byte, error)
}

// Publisher copies a rendered document to an external location and returns a link to it.
type Publisher interface {
	Publish(ctx context.Context, localPath, name string) (string, error)
}
