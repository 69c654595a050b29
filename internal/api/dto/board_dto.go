package dto

import "github.com/spybee/helpdesk/internal/domain"

// SessionResponse identifies a dashboard session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Tickets   int    `json:"tickets"`
}

// DropRequest describes one drag-and-drop gesture between board columns.
type DropRequest struct {
	SourceColumn string `json:"source_column"`
	DestColumn   string `json:"dest_column"`
	TicketID     string `json:"ticket_id"`
}

// StatusChangeRequest is the table view's direct status select.
type StatusChangeRequest struct {
	TicketID string              `json:"ticket_id"`
	Status   domain.TicketStatus `json:"status"`
}

// BoardResponse groups ticket summaries by column, with stat card totals.
type BoardResponse struct {
	Columns map[string][]TicketSummary `json:"columns"`
	Stats   map[string]int             `json:"stats"`
}
