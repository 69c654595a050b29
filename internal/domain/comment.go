package domain

import "time"

// AuthorType identifies who wrote a comment.
type AuthorType string

const (
	AuthorTypeAdmin     AuthorType = "admin"
	AuthorTypeRequester AuthorType = "user"
)

// Comment is one entry in a ticket's conversation thread. Internal comments
// are visible to admins only and are filtered out of requester-facing reads.
type Comment struct {
	ID         string
	TicketID   string
	AuthorType AuthorType
	AuthorID   *string
	AuthorName string
	Body       string
	Internal   bool
	CreatedAt  time.Time
}
