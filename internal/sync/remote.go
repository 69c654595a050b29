package sync

import (
	"context"
	"time"

	"github.com/spybee/helpdesk/internal/domain"
)

// StatusPatch is the payload of a remote status write. UpdatedAt is the
// client clock at request time; the server response supersedes it.
type StatusPatch struct {
	Status    domain.TicketStatus
	UpdatedAt time.Time
}

// RemoteService is the narrow contract the sync core consumes. Update must
// return the updated rows so the coordinator can adopt server-authoritative
// values; zero rows is a failure. Implementations signal classified failures
// with ErrRemoteNotFound / ErrRemoteRejected; any other error counts as a
// transport failure.
type RemoteService interface {
	Update(ctx context.Context, ticketID string, patch StatusPatch) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
}

// NotificationKind distinguishes notifier signals.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a one-way fire-and-forget signal for the surrounding UI.
type Notification struct {
	Kind     NotificationKind
	TicketID string
	Message  string
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}
