package events

import (
	"time"

	"github.com/spybee/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventCommentAdded        EventType = "comment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.AuthorType `json:"type"`
	AdminID *string           `json:"admin_id,omitempty"`
	Email   *string           `json:"email,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Reference string                `json:"reference"`
	Project   string                `json:"project"`
	Category  domain.TicketCategory `json:"category"`
	Email     string                `json:"email"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string            `json:"comment_id"`
	AuthorType  domain.AuthorType `json:"author_type"`
	Internal    bool              `json:"internal"`
	BodyPreview string            `json:"body_preview"`
}
