package sync

import (
	"context"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/spybee/helpdesk/internal/domain"
)

// Column ids match the droppable areas of the dashboard board.
const (
	ColumnOpen       = "open-column"
	ColumnInProgress = "in-progress-column"
	ColumnClosed     = "closed-column"
)

var columnStatuses = map[string]domain.TicketStatus{
	ColumnOpen:       domain.TicketStatusOpen,
	ColumnInProgress: domain.TicketStatusInProgress,
	ColumnClosed:     domain.TicketStatusClosed,
}

// StatusForColumn maps a column id to its status. Unknown ids return false.
func StatusForColumn(columnID string) (domain.TicketStatus, bool) {
	status, ok := columnStatuses[columnID]
	return status, ok
}

// ColumnForStatus is the inverse mapping, used when rendering the board.
func ColumnForStatus(status domain.TicketStatus) string {
	for col, s := range columnStatuses {
		if s == status {
			return col
		}
	}
	return ""
}

// Board translates drag gestures between columns into status changes and
// shields in-flight tickets from stale full refreshes. Each settled drop
// keeps its ticket guarded for a short grace window, since a refresh
// triggered by the same operation may arrive slightly after it resolves.
type Board struct {
	coordinator *Coordinator
	store       *Store
	remote      RemoteService
	logger      *zap.Logger
	grace       time.Duration

	mu stdsync.Mutex
	// settledAt maps ticket id to the moment its last drop settled; entries
	// inside the grace window still override refresh data.
	settledAt map[string]time.Time
}

// BoardDeps bundles collaborators for the board.
type BoardDeps struct {
	Coordinator *Coordinator
	Store       *Store
	Remote      RemoteService
	Logger      *zap.Logger
}

// NewBoard constructs the board and installs itself as the coordinator's
// advisory refresh path.
func NewBoard(deps BoardDeps, grace time.Duration) *Board {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Board{
		coordinator: deps.Coordinator,
		store:       deps.Store,
		remote:      deps.Remote,
		logger:      logger,
		grace:       grace,
		settledAt:   make(map[string]time.Time),
	}
	if deps.Coordinator != nil {
		deps.Coordinator.setRefresh(b.Refresh)
	}
	return b
}

// OnDrop handles a drag gesture. Dropping a card on its own column or on an
// unknown column is a no-op: the store is untouched and no remote call is
// made. A drop on a busy card returns ErrUpdateInFlight immediately.
func (b *Board) OnDrop(ctx context.Context, sourceColumn, destColumn, ticketID string) error {
	if destColumn == "" || sourceColumn == destColumn {
		return nil
	}
	newStatus, ok := StatusForColumn(destColumn)
	if !ok {
		b.logger.Debug("drop on unknown column ignored",
			zap.String("ticket_id", ticketID),
			zap.String("column", destColumn))
		return nil
	}
	if b.coordinator.Pending(ticketID) {
		return ErrUpdateInFlight
	}

	b.logger.Debug("drag drop",
		zap.String("ticket_id", ticketID),
		zap.String("from", sourceColumn),
		zap.String("to", destColumn))

	// The coordinator applies the optimistic move and, on failure, the move
	// back to the source column (restoring the previous status).
	_, err := b.coordinator.UpdateStatus(ctx, ticketID, newStatus)
	b.markSettled(ticketID)
	return err
}

// Refresh rebuilds the store from the remote service. Tickets with an
// in-flight or freshly settled update keep their local status: the optimistic
// state is authoritative until the grace window passes, so stale rows cannot
// snap a card back.
func (b *Board) Refresh(ctx context.Context) error {
	rows, err := b.remote.ListAll(ctx)
	if err != nil {
		return err
	}
	for i := range rows {
		if !b.coordinator.Pending(rows[i].ID) && !b.inGrace(rows[i].ID) {
			continue
		}
		if local, ok := b.store.Get(rows[i].ID); ok {
			rows[i].Status = local.Status
			rows[i].UpdatedAt = local.UpdatedAt
		}
	}
	b.store.ReplaceAll(rows)
	return nil
}

// Columns groups the store snapshot by board column for rendering.
func (b *Board) Columns() map[string][]domain.Ticket {
	grouped := map[string][]domain.Ticket{
		ColumnOpen:       {},
		ColumnInProgress: {},
		ColumnClosed:     {},
	}
	for _, t := range b.store.Snapshot() {
		col := ColumnForStatus(t.Status)
		if col == "" {
			continue
		}
		grouped[col] = append(grouped[col], t)
	}
	return grouped
}

func (b *Board) markSettled(ticketID string) {
	if b.grace <= 0 {
		return
	}
	b.mu.Lock()
	b.settledAt[ticketID] = time.Now()
	b.mu.Unlock()
}

func (b *Board) inGrace(ticketID string) bool {
	if b.grace <= 0 {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	settled, ok := b.settledAt[ticketID]
	if !ok {
		return false
	}
	if time.Since(settled) > b.grace {
		delete(b.settledAt, ticketID)
		return false
	}
	return true
}
