package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spybee/helpdesk/internal/domain"
)

type updateCall struct {
	ticketID string
	patch    StatusPatch
}

type fakeRemote struct {
	mu       stdsync.Mutex
	updates  []updateCall
	listed   int
	updateFn func(ctx context.Context, ticketID string, patch StatusPatch) ([]domain.Ticket, error)
	listFn   func(ctx context.Context) ([]domain.Ticket, error)
}

func (f *fakeRemote) Update(ctx context.Context, ticketID string, patch StatusPatch) ([]domain.Ticket, error) {
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{ticketID: ticketID, patch: patch})
	fn := f.updateFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("no update behavior configured")
	}
	return fn(ctx, ticketID, patch)
}

func (f *fakeRemote) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	f.listed++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return []domain.Ticket{}, nil
	}
	return fn(ctx)
}

func (f *fakeRemote) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

type recordingNotifier struct {
	mu    stdsync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification{}, r.notes...)
}

func serverRow(id string, status domain.TicketStatus, updatedAt time.Time) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		Reference: "SPB-TEST0001",
		Name:      "Dana",
		Email:     "dana@example.com",
		Project:   "Website",
		Category:  domain.CategoryBug,
		Status:    status,
		CreatedAt: updatedAt.Add(-time.Hour),
		UpdatedAt: updatedAt,
	}
}

func seedStore(tickets ...domain.Ticket) *Store {
	store := NewStore()
	store.ReplaceAll(tickets)
	return store
}

func newTestCoordinator(store *Store, remote *fakeRemote, notifier Notifier) *Coordinator {
	return NewCoordinator(CoordinatorDeps{
		Remote:   remote,
		Store:    store,
		Notifier: notifier,
	}, CoordinatorOptions{UpdateTimeout: time.Second})
}

func TestCoordinator_UpdateStatus(t *testing.T) {
	baseTime := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	serverTime := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success adopts server-returned status and timestamp", func(t *testing.T) {
		ticket := serverRow("T-1", domain.TicketStatusOpen, baseTime)
		store := seedStore(ticket)
		notifier := &recordingNotifier{}
		remote := &fakeRemote{
			updateFn: func(_ context.Context, id string, patch StatusPatch) ([]domain.Ticket, error) {
				return []domain.Ticket{serverRow(id, patch.Status, serverTime)}, nil
			},
		}
		coordinator := newTestCoordinator(store, remote, notifier)

		updated, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, updated.Status)
		assert.Equal(t, serverTime, updated.UpdatedAt)

		stored, ok := store.Get("T-1")
		require.True(t, ok)
		assert.Equal(t, domain.TicketStatusClosed, stored.Status)
		assert.Equal(t, serverTime, stored.UpdatedAt, "store must carry the server timestamp, not the client guess")
		assert.False(t, coordinator.Pending("T-1"))

		notes := notifier.all()
		require.Len(t, notes, 1)
		assert.Equal(t, NotifySuccess, notes[0].Kind)
	})

	t.Run("transport failure rolls back and reports unavailable", func(t *testing.T) {
		ticket := serverRow("T-1", domain.TicketStatusOpen, baseTime)
		store := seedStore(ticket)
		notifier := &recordingNotifier{}
		remote := &fakeRemote{
			updateFn: func(_ context.Context, _ string, _ StatusPatch) ([]domain.Ticket, error) {
				return nil, errors.New("connection reset")
			},
		}
		coordinator := newTestCoordinator(store, remote, notifier)

		_, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		require.Error(t, err)
		assert.Equal(t, KindUnavailable, KindOf(err))

		stored, _ := store.Get("T-1")
		assert.Equal(t, domain.TicketStatusOpen, stored.Status)
		assert.Equal(t, baseTime, stored.UpdatedAt, "rollback must leave updatedAt untouched")
		assert.False(t, coordinator.Pending("T-1"))

		notes := notifier.all()
		require.Len(t, notes, 1)
		assert.Equal(t, NotifyError, notes[0].Kind)
	})

	t.Run("remote not found rolls back with not_found kind", func(t *testing.T) {
		store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
		remote := &fakeRemote{
			updateFn: func(_ context.Context, _ string, _ StatusPatch) ([]domain.Ticket, error) {
				return nil, ErrRemoteNotFound
			},
		}
		coordinator := newTestCoordinator(store, remote, nil)

		_, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		assert.Equal(t, KindNotFound, KindOf(err))
		stored, _ := store.Get("T-1")
		assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	})

	t.Run("rejected write rolls back with rejected kind", func(t *testing.T) {
		store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
		remote := &fakeRemote{
			updateFn: func(_ context.Context, _ string, _ StatusPatch) ([]domain.Ticket, error) {
				return nil, ErrRemoteRejected
			},
		}
		coordinator := newTestCoordinator(store, remote, nil)

		_, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusInProgress)
		assert.Equal(t, KindRejected, KindOf(err))
	})

	t.Run("zero rows returned counts as not found", func(t *testing.T) {
		store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
		remote := &fakeRemote{
			updateFn: func(_ context.Context, _ string, _ StatusPatch) ([]domain.Ticket, error) {
				return []domain.Ticket{}, nil
			},
		}
		coordinator := newTestCoordinator(store, remote, nil)

		_, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		assert.Equal(t, KindNotFound, KindOf(err))
		stored, _ := store.Get("T-1")
		assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	})

	t.Run("malformed response is rejected before touching the store", func(t *testing.T) {
		cases := map[string]domain.Ticket{
			"wrong id":        serverRow("T-2", domain.TicketStatusClosed, serverTime),
			"unknown status":  serverRow("T-1", domain.TicketStatus("Bogus"), serverTime),
			"zero updated_at": serverRow("T-1", domain.TicketStatusClosed, time.Time{}),
		}
		for name, row := range cases {
			t.Run(name, func(t *testing.T) {
				store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
				remote := &fakeRemote{
					updateFn: func(_ context.Context, _ string, _ StatusPatch) ([]domain.Ticket, error) {
						return []domain.Ticket{row}, nil
					},
				}
				coordinator := newTestCoordinator(store, remote, nil)

				_, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
				assert.Equal(t, KindRejected, KindOf(err))
				stored, _ := store.Get("T-1")
				assert.Equal(t, domain.TicketStatusOpen, stored.Status)
				assert.Equal(t, baseTime, stored.UpdatedAt)
			})
		}
	})

	t.Run("unknown target status never reaches the remote", func(t *testing.T) {
		store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
		remote := &fakeRemote{}
		coordinator := newTestCoordinator(store, remote, nil)

		_, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatus("Archived"))
		assert.Equal(t, KindRejected, KindOf(err))
		assert.Zero(t, remote.updateCount())
	})

	t.Run("ticket missing from store never reaches the remote", func(t *testing.T) {
		store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
		remote := &fakeRemote{}
		coordinator := newTestCoordinator(store, remote, nil)

		_, err := coordinator.UpdateStatus(context.Background(), "T-404", domain.TicketStatusClosed)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Zero(t, remote.updateCount())
	})

	t.Run("repeated failures leave the same store state", func(t *testing.T) {
		store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
		remote := &fakeRemote{
			updateFn: func(_ context.Context, _ string, _ StatusPatch) ([]domain.Ticket, error) {
				return nil, errors.New("down")
			},
		}
		coordinator := newTestCoordinator(store, remote, nil)

		_, err1 := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		first, _ := store.Get("T-1")
		_, err2 := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		second, _ := store.Get("T-1")

		require.Error(t, err1)
		require.Error(t, err2)
		assert.Equal(t, first, second)
		assert.Equal(t, domain.TicketStatusOpen, second.Status)
	})

	t.Run("second update for same ticket is rejected while first is in flight", func(t *testing.T) {
		store := seedStore(serverRow("T-3", domain.TicketStatusOpen, baseTime))
		release := make(chan struct{})
		remote := &fakeRemote{
			updateFn: func(_ context.Context, id string, patch StatusPatch) ([]domain.Ticket, error) {
				<-release
				return []domain.Ticket{serverRow(id, patch.Status, serverTime)}, nil
			},
		}
		coordinator := newTestCoordinator(store, remote, nil)

		done := make(chan error, 1)
		go func() {
			_, err := coordinator.UpdateStatus(context.Background(), "T-3", domain.TicketStatusInProgress)
			done <- err
		}()

		require.Eventually(t, func() bool { return coordinator.Pending("T-3") },
			time.Second, time.Millisecond)

		// The optimistic status is already visible.
		stored, _ := store.Get("T-3")
		assert.Equal(t, domain.TicketStatusInProgress, stored.Status)

		_, err := coordinator.UpdateStatus(context.Background(), "T-3", domain.TicketStatusClosed)
		assert.ErrorIs(t, err, ErrUpdateInFlight)

		close(release)
		require.NoError(t, <-done)

		stored, _ = store.Get("T-3")
		assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
		assert.Equal(t, 1, remote.updateCount(), "rejected caller must not issue a remote call")
	})

	t.Run("updates for different tickets do not interfere", func(t *testing.T) {
		store := seedStore(
			serverRow("T-1", domain.TicketStatusOpen, baseTime),
			serverRow("T-2", domain.TicketStatusOpen, baseTime),
		)
		remote := &fakeRemote{
			updateFn: func(_ context.Context, id string, patch StatusPatch) ([]domain.Ticket, error) {
				return []domain.Ticket{serverRow(id, patch.Status, serverTime)}, nil
			},
		}
		coordinator := newTestCoordinator(store, remote, nil)

		var wg stdsync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = coordinator.UpdateStatus(context.Background(), "T-2", domain.TicketStatusInProgress)
		}()
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		first, _ := store.Get("T-1")
		second, _ := store.Get("T-2")
		assert.Equal(t, domain.TicketStatusClosed, first.Status)
		assert.Equal(t, domain.TicketStatusInProgress, second.Status)
	})

	t.Run("timeout resolves to unavailable", func(t *testing.T) {
		store := seedStore(serverRow("T-1", domain.TicketStatusOpen, baseTime))
		remote := &fakeRemote{
			updateFn: func(ctx context.Context, _ string, _ StatusPatch) ([]domain.Ticket, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		coordinator := NewCoordinator(CoordinatorDeps{Remote: remote, Store: store},
			CoordinatorOptions{UpdateTimeout: 20 * time.Millisecond})

		_, err := coordinator.UpdateStatus(context.Background(), "T-1", domain.TicketStatusClosed)
		assert.Equal(t, KindUnavailable, KindOf(err))
		stored, _ := store.Get("T-1")
		assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	})
}
