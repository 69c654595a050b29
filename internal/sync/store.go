package sync

import (
	stdsync "sync"
	"time"

	"github.com/spybee/helpdesk/internal/domain"
)

// Store is the in-memory ticket collection backing one dashboard session.
// It is rebuilt wholesale on a full refresh and patched in place by the
// coordinator for single-ticket updates. Writes replace whole tickets so a
// reader never observes a partially mutated record.
type Store struct {
	mu      stdsync.RWMutex
	order   []string
	tickets map[string]domain.Ticket
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{tickets: make(map[string]domain.Ticket)}
}

// ReplaceAll rebuilds the store from a full refresh, keeping the given order.
// Duplicate ids keep the first occurrence.
func (s *Store) ReplaceAll(tickets []domain.Ticket) {
	order := make([]string, 0, len(tickets))
	byID := make(map[string]domain.Ticket, len(tickets))
	for _, t := range tickets {
		if _, seen := byID[t.ID]; seen {
			continue
		}
		order = append(order, t.ID)
		byID[t.ID] = t
	}

	s.mu.Lock()
	s.order = order
	s.tickets = byID
	s.mu.Unlock()
}

// Get returns a copy of the ticket with the given id.
func (s *Store) Get(id string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	return t, ok
}

// Snapshot returns the tickets in store order. The slice is a copy.
func (s *Store) Snapshot() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tickets[id])
	}
	return out
}

// Len reports the number of tickets held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// SetStatus overwrites the status of one ticket, leaving UpdatedAt as is.
// Used for the optimistic apply and for rollback.
func (s *Store) SetStatus(id string, status domain.TicketStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return false
	}
	t.Status = status
	s.tickets[id] = t
	return true
}

// Confirm adopts the server-authoritative status and timestamp for a ticket.
func (s *Store) Confirm(id string, status domain.TicketStatus, updatedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return false
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	s.tickets[id] = t
	return true
}
