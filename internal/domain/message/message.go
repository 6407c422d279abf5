package message

import "github.com/pkg/errors"

// ErrNotFound is returned when the source has no message for the given id or query.
var ErrNotFound = errors.New("message not found")

// ErrUpstream is returned when the mail service fails or cannot be reached.
var ErrUpstream = errors.New("mail service failed")

// ErrUnavailable is returned while the mail source is not authorized yet.
var ErrUnavailable = errors.New("mail source not configured")

// ID represents Gmail Message ID.
type ID string

// EmailMessage represents an email message we obtain from Gmail API but
// independent from any external SDK. It only contains the data the domain
// layer cares about.
type EmailMessage struct {
	ID      ID
	Subject string
	From    string
	Body    string // plain text body extracted & aggregated
}

// Summary is a light listing entry.
type Summary struct {
	ID           ID     `json:"id"`
	Subject      string `json:"subject"`
	From         string `json:"from"`
	Snippet      string `json:"snippet"`
	InternalDate int64  `json:"internalDate"`
}
