package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spybee/helpdesk/internal/config"
	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/observability"
	"github.com/spybee/helpdesk/internal/repository"
	"github.com/spybee/helpdesk/internal/service"
	"github.com/spybee/helpdesk/internal/sync"
)

// stubTicketRepo backs a real TicketService with canned rows.
type stubTicketRepo struct {
	repository.TicketRepository

	rows      []domain.Ticket
	updateErr error
}

func (s *stubTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	for i := range s.rows {
		if s.rows[i].ID == id {
			row := s.rows[i]
			return &row, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, updatedAt time.Time) ([]domain.Ticket, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Status = status
			s.rows[i].UpdatedAt = updatedAt
			return []domain.Ticket{s.rows[i]}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	return append([]domain.Ticket{}, s.rows...), nil
}

func boardTicket(id string, status domain.TicketStatus) domain.Ticket {
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return domain.Ticket{
		ID:        id,
		Reference: "SPB-AB12CD34",
		Name:      "Dana",
		Email:     "dana@example.com",
		Category:  domain.CategoryBug,
		Status:    status,
		CreatedAt: when,
		UpdatedAt: when,
	}
}

func newTestRegistry(repo *stubTicketRepo) *Registry {
	tickets := service.NewTicketService(service.TicketDependencies{TicketRepo: repo})
	syncCfg := config.SyncConfig{UpdateTimeoutSeconds: 1}
	return NewRegistry(NewRemote(tickets), nil, observability.NewMetrics(), zap.NewNop(), syncCfg)
}

func TestRegistry_OpenLoadsStore(t *testing.T) {
	repo := &stubTicketRepo{rows: []domain.Ticket{
		boardTicket("T-1", domain.TicketStatusOpen),
		boardTicket("T-2", domain.TicketStatusClosed),
	}}
	registry := newTestRegistry(repo)

	session, err := registry.Open(context.Background(), "A-1")
	require.NoError(t, err)
	assert.Equal(t, 2, session.Store.Len())
	assert.Equal(t, "A-1", session.AdminID)

	found, ok := registry.Get(session.ID)
	require.True(t, ok)
	assert.Same(t, session, found)

	registry.Close(session.ID)
	_, ok = registry.Get(session.ID)
	assert.False(t, ok)
}

func TestRegistry_DropRoundTrip(t *testing.T) {
	repo := &stubTicketRepo{rows: []domain.Ticket{boardTicket("T-1", domain.TicketStatusOpen)}}
	registry := newTestRegistry(repo)

	session, err := registry.Open(context.Background(), "A-1")
	require.NoError(t, err)

	err = session.Board.OnDrop(context.Background(), sync.ColumnOpen, sync.ColumnInProgress, "T-1")
	require.NoError(t, err)

	stored, ok := session.Store.Get("T-1")
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
	// The repo row is the authority; its write went through.
	assert.Equal(t, domain.TicketStatusInProgress, repo.rows[0].Status)
}

func TestRegistry_DropFailureRollsBack(t *testing.T) {
	repo := &stubTicketRepo{rows: []domain.Ticket{boardTicket("T-1", domain.TicketStatusOpen)}}
	registry := newTestRegistry(repo)

	session, err := registry.Open(context.Background(), "A-1")
	require.NoError(t, err)

	repo.updateErr = errors.New("connection refused")
	err = session.Board.OnDrop(context.Background(), sync.ColumnOpen, sync.ColumnClosed, "T-1")
	require.Error(t, err)
	assert.Equal(t, sync.KindUnavailable, sync.KindOf(err))

	stored, _ := session.Store.Get("T-1")
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestRegistry_PruneIdle(t *testing.T) {
	repo := &stubTicketRepo{}
	registry := newTestRegistry(repo)

	session, err := registry.Open(context.Background(), "A-1")
	require.NoError(t, err)

	// A fresh session survives pruning.
	assert.Zero(t, registry.PruneIdle())
	_, ok := registry.Get(session.ID)
	assert.True(t, ok)

	// Backdate the session past the TTL.
	session.mu.Lock()
	session.lastSeen = time.Now().Add(-time.Hour)
	session.mu.Unlock()

	assert.Equal(t, 1, registry.PruneIdle())
	_, ok = registry.Get(session.ID)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	store := sync.NewStore()
	store.ReplaceAll([]domain.Ticket{
		boardTicket("T-1", domain.TicketStatusOpen),
		boardTicket("T-2", domain.TicketStatusOpen),
		boardTicket("T-3", domain.TicketStatusClosed),
	})

	counts := Stats(store)
	assert.Equal(t, 2, counts[domain.TicketStatusOpen])
	assert.Equal(t, 0, counts[domain.TicketStatusInProgress])
	assert.Equal(t, 1, counts[domain.TicketStatusClosed])
}

func TestRemoteAdapter_ErrorMapping(t *testing.T) {
	repo := &stubTicketRepo{rows: []domain.Ticket{boardTicket("T-1", domain.TicketStatusOpen)}}
	tickets := service.NewTicketService(service.TicketDependencies{TicketRepo: repo})
	remote := NewRemote(tickets)
	ctx := context.Background()

	t.Run("missing ticket maps to not found", func(t *testing.T) {
		_, err := remote.Update(ctx, "T-404", sync.StatusPatch{Status: domain.TicketStatusClosed, UpdatedAt: time.Now()})
		assert.ErrorIs(t, err, sync.ErrRemoteNotFound)
	})

	t.Run("unknown status maps to rejected", func(t *testing.T) {
		_, err := remote.Update(ctx, "T-1", sync.StatusPatch{Status: domain.TicketStatus("Bogus"), UpdatedAt: time.Now()})
		assert.ErrorIs(t, err, sync.ErrRemoteRejected)
	})

	t.Run("transport errors pass through", func(t *testing.T) {
		repo.updateErr = errors.New("connection refused")
		defer func() { repo.updateErr = nil }()

		_, err := remote.Update(ctx, "T-1", sync.StatusPatch{Status: domain.TicketStatusClosed, UpdatedAt: time.Now()})
		require.Error(t, err)
		assert.False(t, errors.Is(err, sync.ErrRemoteNotFound))
		assert.False(t, errors.Is(err, sync.ErrRemoteRejected))
	})

	t.Run("successful update returns the row", func(t *testing.T) {
		when := time.Now().UTC()
		rows, err := remote.Update(ctx, "T-1", sync.StatusPatch{Status: domain.TicketStatusClosed, UpdatedAt: when})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.TicketStatusClosed, rows[0].Status)
	})
}
