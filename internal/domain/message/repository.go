package message

import "context"

// Repository abstracts data source of EmailMessage.
// The implementation will live in infrastructure layer (e.g., Gmail API).
type Repository interface {
	GetByID(ctx context.Context, id ID) (*EmailMessage, error)
	// List returns up to max summaries matching query, newest first.
	List(ctx context.Context, query string, max int64) ([]Summary, error)
	// LatestID returns the newest message id matching query or ErrNotFound.
	LatestID(ctx context.Context, query string) (ID, error)
}
