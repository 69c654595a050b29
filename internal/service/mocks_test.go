package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/events"
	"github.com/spybee/helpdesk/internal/repository"
)

type mockTicketRepo struct {
	mock.Mock
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *mockTicketRepo) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) ([]domain.Ticket, error) {
	args := m.Called(ctx, id, status, updatedAt)
	if rows := args.Get(0); rows != nil {
		return rows.([]domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) GetByReference(ctx context.Context, reference string) (*domain.Ticket, error) {
	args := m.Called(ctx, reference)
	if t := args.Get(0); t != nil {
		return t.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) ListByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	args := m.Called(ctx, email)
	if rows := args.Get(0); rows != nil {
		return rows.([]domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if rows := args.Get(0); rows != nil {
		return rows.([]domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	if rows := args.Get(0); rows != nil {
		return rows.([]domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	args := m.Called(ctx)
	if counts := args.Get(0); counts != nil {
		return counts.(map[domain.TicketStatus]int), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCommentRepo struct {
	mock.Mock
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	args := m.Called(ctx, ticketID)
	if rows := args.Get(0); rows != nil {
		return rows.([]domain.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAttachmentRepo struct {
	mock.Mock
}

func (m *mockAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *mockAttachmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	args := m.Called(ctx, ticketID)
	if rows := args.Get(0); rows != nil {
		return rows.([]domain.Attachment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) Create(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *mockAdminRepo) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*domain.Admin), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if a := args.Get(0); a != nil {
		return a.(*domain.Admin), args.Error(1)
	}
	return nil, args.Error(1)
}

// capturingDispatcher records published events for assertions.
type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}
