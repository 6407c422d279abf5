package gmail

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/api/gmail/v1"

	"voicepage/internal/domain/message"
)

// LazyRepository builds the Gmail client on first use and retries until it
// succeeds, so a token saved after start-up is picked up without a restart.
type LazyRepository struct {
	build func() (*gmail.Service, error)

	mu   sync.Mutex
	repo *MessageRepository
}

func NewLazyRepository(build func() (*gmail.Service, error)) *LazyRepository {
	return &LazyRepository{build: build}
}

func (l *LazyRepository) get() (*MessageRepository, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.repo != nil {
		return l.repo, nil
	}
	srv, err := l.build()
	if err != nil {
		return nil, errors.Wrapf(message.ErrUnavailable, "gmail: %v", err)
	}
	l.repo = NewMessageRepository(srv)
	return l.repo, nil
}

func (l *LazyRepository) GetByID(ctx context.Context, id message.ID) (*message.EmailMessage, error) {
	r, err := l.get()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (l *LazyRepository) List(ctx context.Context, query string, max int64) ([]message.Summary, error) {
	r, err := l.get()
	if err != nil {
		return nil, err
	}
	return r.List(ctx, query, max)
}

func (l *LazyRepository) LatestID(ctx context.Context, query string) (message.ID, error) {
	r, err := l.get()
	if err != nil {
		return "", err
	}
	return r.LatestID(ctx, query)
}
