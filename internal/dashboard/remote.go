package dashboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/service"
	"github.com/spybee/helpdesk/internal/sync"
)

// remoteAdapter bridges the ticket service to the narrow contract the sync
// core consumes, translating persistence failures into the sentinels the
// coordinator classifies.
type remoteAdapter struct {
	tickets *service.TicketService
}

// NewRemote wraps the ticket service as a sync.RemoteService.
func NewRemote(tickets *service.TicketService) sync.RemoteService {
	return &remoteAdapter{tickets: tickets}
}

func (r *remoteAdapter) Update(ctx context.Context, ticketID string, patch sync.StatusPatch) ([]domain.Ticket, error) {
	rows, err := r.tickets.UpdateStatus(ctx, ticketID, patch.Status, patch.UpdatedAt)
	switch {
	case err == nil:
		return rows, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, sync.ErrRemoteNotFound
	case errors.Is(err, service.ErrUnknownStatus):
		return nil, sync.ErrRemoteRejected
	default:
		return nil, err
	}
}

func (r *remoteAdapter) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.tickets.ListAll(ctx)
}
