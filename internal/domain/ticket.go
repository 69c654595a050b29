package domain

import "time"

// TicketStatus enumerates the lifecycle states shown on the kanban board.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// ValidStatus reports whether s is one of the three known states.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketCategory classifies the nature of a support request.
type TicketCategory string

const (
	CategoryBug           TicketCategory = "Bug"
	CategoryComplaint     TicketCategory = "Complaint"
	CategoryDeliveryIssue TicketCategory = "Delivery Issue"
	CategoryOther         TicketCategory = "Other"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryBug, CategoryComplaint, CategoryDeliveryIssue, CategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Status transitions are
// unordered: any state is reachable from any other. UpdatedAt always carries
// the value the database returned, never a client-side guess.
type Ticket struct {
	ID          string
	Reference   string
	Name        string
	Email       string
	Project     string
	Category    TicketCategory
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Attachments []Attachment
}

// Attachment records metadata for a file kept in object storage. The storage
// backend itself is external; only the reference lives here.
type Attachment struct {
	ID        string
	TicketID  string
	FileName  string
	FileURL   string
	CreatedAt time.Time
}
