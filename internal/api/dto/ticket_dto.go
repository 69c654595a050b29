package dto

import (
	"time"

	"github.com/spybee/helpdesk/internal/domain"
)

// CreateTicketRequest payload for public submission.
type CreateTicketRequest struct {
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Project     string                `json:"project"`
	Category    domain.TicketCategory `json:"category"`
	Description string                `json:"description"`
	Attachments []AttachmentRequest   `json:"attachments"`
}

// AttachmentRequest describes attachment metadata input.
type AttachmentRequest struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// TicketSummary response.
type TicketSummary struct {
	ID        string                `json:"id"`
	Reference string                `json:"reference"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Project   string                `json:"project"`
	Category  domain.TicketCategory `json:"category"`
	Status    domain.TicketStatus   `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	Reference   string                `json:"reference"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Project     string                `json:"project"`
	Category    domain.TicketCategory `json:"category"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Attachments []AttachmentResponse  `json:"attachments"`
	Comments    []CommentResponse     `json:"comments"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID         string            `json:"id"`
	AuthorType domain.AuthorType `json:"author_type"`
	AuthorName string            `json:"author_name"`
	Body       string            `json:"body"`
	Internal   bool              `json:"internal"`
	CreatedAt  time.Time         `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Internal bool   `json:"internal"`
}
