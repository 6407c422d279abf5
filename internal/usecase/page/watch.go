package page

import (
	"context"
	"log"
	"sync"

	"github.com/pkg/errors"

	"voicepage/internal/domain/message"
	domainpage "voicepage/internal/domain/page"
)

// ProcessedSet remembers which messages already have a page.
type ProcessedSet interface {
	Contains(id string) (bool, error)
	Append(id string) error
}

// WatchOutput reports what one watch pass did.
type WatchOutput struct {
	MessageID message.ID    `json:"messageId"`
	Skipped   bool          `json:"skipped"`
	Render    *RenderOutput `json:"render,omitempty"`
	Link      string        `json:"link,omitempty"`
}

// Watch renders the newest message matching a query, once per message.
type Watch struct {
	repo      message.Repository
	render    *RenderFromMessage
	processed ProcessedSet
	publisher domainpage.Publisher // optional
	query     string

	// serialises passes so the processed check and append cannot interleave
	mu sync.Mutex
}

func NewWatch(repo message.Repository, render *RenderFromMessage, processed ProcessedSet, publisher domainpage.Publisher, query string) *Watch {
	return &Watch{repo: repo, render: render, processed: processed, publisher: publisher, query: query}
}

// RunOnce performs a single pass. A query without matches is not an error.
// Concurrent calls run one after another.
func (w *Watch) RunOnce(ctx context.Context) (*WatchOutput, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, err := w.repo.LatestID(ctx, w.query)
	if errors.Is(err, message.ErrNotFound) {
		log.Printf("[watch] no message matches %q", w.query)
		return &WatchOutput{Skipped: true}, nil
	}
	if err != nil {
		return nil, err
	}

	done, err := w.processed.Contains(string(id))
	if err != nil {
		return nil, err
	}
	if done {
		log.Printf("[watch] message %s already processed", id)
		return &WatchOutput{MessageID: id, Skipped: true}, nil
	}

	out, err := w.render.Execute(ctx, &RenderFromMessageInput{MessageID: string(id)})
	if err != nil {
		return nil, errors.Wrapf(err, "render message %s", id)
	}
	res := &WatchOutput{MessageID: id, Render: out}

	if w.publisher != nil {
		link, err := w.publisher.Publish(ctx, out.Path, string(out.ID)+".html")
		if err != nil {
			// the page exists locally; retry publishing on the next pass
			return nil, errors.Wrapf(err, "publish page %s", out.ID)
		}
		res.Link = link
		log.Printf("[watch] published %s: %s", out.ID, link)
	}

	if err := w.processed.Append(string(id)); err != nil {
		return nil, err
	}
	return res, nil
}
