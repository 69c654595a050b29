package sync

import (
	"errors"
	"fmt"
)

// ErrorKind classifies status update failures. All kinds share the same
// rollback behavior; they differ only in the message surfaced to the user.
type ErrorKind string

const (
	// KindNotFound means the ticket id is unknown to the remote service.
	KindNotFound ErrorKind = "not_found"
	// KindRejected means the write was refused or the response was malformed.
	KindRejected ErrorKind = "rejected"
	// KindUnavailable means transport failure or timeout.
	KindUnavailable ErrorKind = "unavailable"
)

// Sentinels remote implementations return so the coordinator can classify
// their failures. Anything else is treated as transport trouble.
var (
	ErrRemoteNotFound = errors.New("ticket not found")
	ErrRemoteRejected = errors.New("update rejected")

	// ErrUpdateInFlight is returned when a status change is requested for a
	// ticket that already has one pending. The second caller is rejected, not
	// queued; a new user-initiated action is required.
	ErrUpdateInFlight = errors.New("status update already in flight for ticket")
)

// StatusError reports a failed status change after local state was rolled back.
type StatusError struct {
	Kind     ErrorKind
	TicketID string
	Err      error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("status update for ticket %s: %s: %v", e.TicketID, e.Kind, e.Err)
	}
	return fmt.Sprintf("status update for ticket %s: %s", e.TicketID, e.Kind)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err, defaulting to Unavailable.
func KindOf(err error) ErrorKind {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Kind
	}
	return KindUnavailable
}
