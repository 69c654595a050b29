package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/spybee/helpdesk/internal/domain"
)

// pendingUpdate records one in-flight status change. It is held until the
// remote call resolves, then either discarded (success) or applied as a
// reverse patch (failure).
type pendingUpdate struct {
	ticketID   string
	prevStatus domain.TicketStatus
	nextStatus domain.TicketStatus
	startedAt  time.Time
}

// Coordinator owns the write-then-reconcile logic for single-ticket status
// changes: optimistic local apply, remote write, adoption of the
// server-returned values on success, deterministic rollback on failure.
// Overlapping updates for the same ticket are rejected with
// ErrUpdateInFlight; updates for different tickets may run concurrently.
type Coordinator struct {
	remote   RemoteService
	store    *Store
	notifier Notifier
	logger   *zap.Logger

	timeout      time.Duration
	refreshDelay time.Duration
	refresh      func(ctx context.Context) error

	mu       stdsync.Mutex
	inFlight map[string]pendingUpdate
}

// CoordinatorDeps bundles collaborators for the coordinator.
type CoordinatorDeps struct {
	Remote   RemoteService
	Store    *Store
	Notifier Notifier
	Logger   *zap.Logger
}

// CoordinatorOptions tunes timing behavior.
type CoordinatorOptions struct {
	// UpdateTimeout bounds one remote write; elapsed deadlines resolve to
	// the Unavailable kind. Zero means 10s.
	UpdateTimeout time.Duration
	// RefreshDelay schedules an advisory full refresh this long after a
	// successful write, to reconcile concurrent server-side edits. Zero
	// disables it; correctness does not depend on it.
	RefreshDelay time.Duration
}

// NewCoordinator constructs the coordinator.
func NewCoordinator(deps CoordinatorDeps, opts CoordinatorOptions) *Coordinator {
	timeout := opts.UpdateTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		remote:       deps.Remote,
		store:        deps.Store,
		notifier:     deps.Notifier,
		logger:       logger,
		timeout:      timeout,
		refreshDelay: opts.RefreshDelay,
		inFlight:     make(map[string]pendingUpdate),
	}
}

// setRefresh installs the advisory refresh hook. Installed by the Board so
// refreshes pass through its stale-data guard.
func (c *Coordinator) setRefresh(fn func(ctx context.Context) error) {
	c.refresh = fn
}

// Pending reports whether a status change is in flight for the ticket.
func (c *Coordinator) Pending(ticketID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[ticketID]
	return ok
}

// UpdateStatus performs one ticket's status change with optimistic-UI
// semantics. On success the store entry carries the status and UpdatedAt the
// remote service returned. On failure the entry is restored to its previous
// status, UpdatedAt untouched, and the returned error carries the kind.
func (c *Coordinator) UpdateStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, &StatusError{
			Kind:     KindRejected,
			TicketID: ticketID,
			Err:      fmt.Errorf("unknown status %q", newStatus),
		}
	}

	c.mu.Lock()
	if _, busy := c.inFlight[ticketID]; busy {
		c.mu.Unlock()
		return nil, ErrUpdateInFlight
	}
	current, ok := c.store.Get(ticketID)
	if !ok {
		c.mu.Unlock()
		return nil, &StatusError{Kind: KindNotFound, TicketID: ticketID, Err: errors.New("ticket not in store")}
	}
	pending := pendingUpdate{
		ticketID:   ticketID,
		prevStatus: current.Status,
		nextStatus: newStatus,
		startedAt:  time.Now(),
	}
	c.inFlight[ticketID] = pending
	c.store.SetStatus(ticketID, newStatus)
	c.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.remote.Update(callCtx, ticketID, StatusPatch{Status: newStatus, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return nil, c.fail(pending, classify(err), err)
	}
	if len(rows) == 0 {
		return nil, c.fail(pending, KindNotFound, errors.New("remote update affected no rows"))
	}

	row := rows[0]
	if err := validateRow(ticketID, row); err != nil {
		return nil, c.fail(pending, KindRejected, err)
	}

	c.mu.Lock()
	c.store.Confirm(ticketID, row.Status, row.UpdatedAt)
	delete(c.inFlight, ticketID)
	c.mu.Unlock()

	c.logger.Info("ticket status updated",
		zap.String("ticket_id", ticketID),
		zap.String("old_status", string(pending.prevStatus)),
		zap.String("new_status", string(row.Status)),
		zap.Duration("took", time.Since(pending.startedAt)))
	c.notify(Notification{
		Kind:     NotifySuccess,
		TicketID: ticketID,
		Message:  fmt.Sprintf("Ticket %s status updated to %s", ticketID, row.Status),
	})

	confirmed, _ := c.store.Get(ticketID)
	c.scheduleRefresh()
	return &confirmed, nil
}

// fail rolls the store back to the pre-change status and reports the error.
// Calling it twice for the same pending update is harmless: the store already
// holds the previous status.
func (c *Coordinator) fail(pending pendingUpdate, kind ErrorKind, cause error) error {
	c.mu.Lock()
	c.store.SetStatus(pending.ticketID, pending.prevStatus)
	delete(c.inFlight, pending.ticketID)
	c.mu.Unlock()

	c.logger.Warn("ticket status update failed",
		zap.String("ticket_id", pending.ticketID),
		zap.String("requested_status", string(pending.nextStatus)),
		zap.String("kind", string(kind)),
		zap.Error(cause))
	c.notify(Notification{
		Kind:     NotifyError,
		TicketID: pending.ticketID,
		Message:  failureMessage(kind),
	})
	return &StatusError{Kind: kind, TicketID: pending.ticketID, Err: cause}
}

func (c *Coordinator) notify(n Notification) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}

// scheduleRefresh fires the advisory full refresh after the configured delay.
func (c *Coordinator) scheduleRefresh() {
	if c.refreshDelay <= 0 || c.refresh == nil {
		return
	}
	refresh := c.refresh
	time.AfterFunc(c.refreshDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if err := refresh(ctx); err != nil {
			c.logger.Debug("advisory refresh failed", zap.Error(err))
		}
	})
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrRemoteNotFound):
		return KindNotFound
	case errors.Is(err, ErrRemoteRejected):
		return KindRejected
	default:
		return KindUnavailable
	}
}

// validateRow checks the remote response at the boundary before it touches
// the store. Malformed rows are rejected rather than propagated.
func validateRow(ticketID string, row domain.Ticket) error {
	if row.ID != ticketID {
		return fmt.Errorf("remote returned ticket %s, wanted %s", row.ID, ticketID)
	}
	if !domain.ValidStatus(row.Status) {
		return fmt.Errorf("remote returned unknown status %q", row.Status)
	}
	if row.UpdatedAt.IsZero() {
		return errors.New("remote returned zero updated_at")
	}
	return nil
}

func failureMessage(kind ErrorKind) string {
	switch kind {
	case KindNotFound:
		return "Ticket no longer exists"
	case KindRejected:
		return "Status change was rejected"
	default:
		return "Could not reach the ticket service, please try again"
	}
}
