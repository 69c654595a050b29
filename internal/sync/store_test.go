package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spybee/helpdesk/internal/domain"
)

func TestStore_ReplaceAll(t *testing.T) {
	when := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("keeps insertion order", func(t *testing.T) {
		store := NewStore()
		store.ReplaceAll([]domain.Ticket{
			serverRow("T-2", domain.TicketStatusOpen, when),
			serverRow("T-1", domain.TicketStatusClosed, when),
			serverRow("T-3", domain.TicketStatusInProgress, when),
		})

		snapshot := store.Snapshot()
		require.Len(t, snapshot, 3)
		assert.Equal(t, "T-2", snapshot[0].ID)
		assert.Equal(t, "T-1", snapshot[1].ID)
		assert.Equal(t, "T-3", snapshot[2].ID)
	})

	t.Run("duplicate ids keep the first occurrence", func(t *testing.T) {
		store := NewStore()
		store.ReplaceAll([]domain.Ticket{
			serverRow("T-1", domain.TicketStatusOpen, when),
			serverRow("T-1", domain.TicketStatusClosed, when),
		})

		assert.Equal(t, 1, store.Len())
		got, ok := store.Get("T-1")
		require.True(t, ok)
		assert.Equal(t, domain.TicketStatusOpen, got.Status)
	})

	t.Run("drops tickets absent from the new set", func(t *testing.T) {
		store := seedStore(
			serverRow("T-1", domain.TicketStatusOpen, when),
			serverRow("T-2", domain.TicketStatusOpen, when),
		)
		store.ReplaceAll([]domain.Ticket{serverRow("T-2", domain.TicketStatusClosed, when)})

		assert.Equal(t, 1, store.Len())
		_, ok := store.Get("T-1")
		assert.False(t, ok)
	})
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	when := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := seedStore(serverRow("T-1", domain.TicketStatusOpen, when))

	snapshot := store.Snapshot()
	snapshot[0].Status = domain.TicketStatusClosed

	got, _ := store.Get("T-1")
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
}

func TestStore_SetStatus(t *testing.T) {
	when := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := seedStore(serverRow("T-1", domain.TicketStatusOpen, when))

	require.True(t, store.SetStatus("T-1", domain.TicketStatusInProgress))
	got, _ := store.Get("T-1")
	assert.Equal(t, domain.TicketStatusInProgress, got.Status)
	assert.Equal(t, when, got.UpdatedAt, "SetStatus must not touch UpdatedAt")

	assert.False(t, store.SetStatus("T-404", domain.TicketStatusClosed))
}

func TestStore_Confirm(t *testing.T) {
	when := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	confirmedAt := when.Add(time.Hour)
	store := seedStore(serverRow("T-1", domain.TicketStatusOpen, when))

	require.True(t, store.Confirm("T-1", domain.TicketStatusClosed, confirmedAt))
	got, _ := store.Get("T-1")
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	assert.Equal(t, confirmedAt, got.UpdatedAt)

	assert.False(t, store.Confirm("T-404", domain.TicketStatusClosed, confirmedAt))
}
