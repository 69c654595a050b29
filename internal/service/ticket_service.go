package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/events"
	"github.com/spybee/helpdesk/internal/repository"
)

// TicketService coordinates ticket workflows: intake, tracking, comments and
// the status writes the dashboard synchronization core delegates to.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes the public submission payload.
type TicketCreateInput struct {
	Name        string
	Email       string
	Project     string
	Category    domain.TicketCategory
	Description string
	Attachments []AttachmentInput
}

// AttachmentInput defines attachment metadata; the file itself already lives
// in object storage.
type AttachmentInput struct {
	FileName string
	FileURL  string
}

// CommentInput describes a new thread entry.
type CommentInput struct {
	Body     string
	Internal bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket records a public submission and returns it with its tracking
// reference.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	description := strings.TrimSpace(input.Description)
	if name == "" || email == "" || description == "" {
		return nil, errors.New("name, email and description required")
	}
	category := input.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, errors.New("unknown category")
	}

	ticket := &domain.Ticket{
		Reference:   generateReference(),
		Name:        name,
		Email:       email,
		Project:     strings.TrimSpace(input.Project),
		Category:    category,
		Description: description,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	for _, att := range input.Attachments {
		record := &domain.Attachment{
			TicketID: ticket.ID,
			FileName: att.FileName,
			FileURL:  att.FileURL,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return nil, err
		}
		ticket.Attachments = append(ticket.Attachments, *record)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    requesterActor(ticket.Email),
		Payload: events.TicketCreatedPayload{
			Reference: ticket.Reference,
			Project:   ticket.Project,
			Category:  ticket.Category,
			Email:     ticket.Email,
		},
	})
	return ticket, nil
}

// ListTicketsByEmail returns tickets submitted with the given address,
// newest first.
func (s *TicketService) ListTicketsByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email required")
	}
	return s.tickets.ListByEmail(ctx, email)
}

// GetTicketForRequester fetches one ticket with its public thread, gated on
// the requester's email. Internal notes never leave this method.
func (s *TicketService) GetTicketForRequester(ctx context.Context, ticketID, email string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadWithAttachments(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !strings.EqualFold(ticket.Email, strings.TrimSpace(email)) {
		return nil, nil, errors.New("access denied")
	}
	thread, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	visible := make([]domain.Comment, 0, len(thread))
	for _, comment := range thread {
		if comment.Internal {
			continue
		}
		visible = append(visible, comment)
	}
	return ticket, visible, nil
}

// GetTicketForAdmin fetches one ticket with its full thread, internal notes
// included.
func (s *TicketService) GetTicketForAdmin(ctx context.Context, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadWithAttachments(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	thread, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, thread, nil
}

// GetTicketByReference resolves a tracking reference.
func (s *TicketService) GetTicketByReference(ctx context.Context, reference string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTickets returns filtered tickets for the dashboard table view.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, filter)
}

// CountByStatus returns per-status totals for the dashboard stat cards.
func (s *TicketService) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	return s.tickets.CountByStatus(ctx)
}

// AddComment appends a thread entry. Requesters may only post public
// comments on their own tickets; admins may also post internal notes.
func (s *TicketService) AddComment(ctx context.Context, actor domain.AuthorType, actorID, actorName, actorEmail, ticketID string, input CommentInput) (*domain.Comment, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, errors.New("comment body required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	switch actor {
	case domain.AuthorTypeRequester:
		if !strings.EqualFold(ticket.Email, strings.TrimSpace(actorEmail)) {
			return nil, errors.New("access denied")
		}
		if input.Internal {
			return nil, errors.New("requesters cannot post internal notes")
		}
	case domain.AuthorTypeAdmin:
		// admins may post on any ticket
	default:
		return nil, errors.New("unknown actor")
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorType: actor,
		AuthorName: actorName,
		Body:       body,
		Internal:   input.Internal,
	}
	if actorID != "" {
		id := actorID
		comment.AuthorID = &id
	}
	if comment.AuthorName == "" {
		comment.AuthorName = "Anonymous"
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    actorFor(actor, actorID, ticket.Email),
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			AuthorType:  comment.AuthorType,
			Internal:    comment.Internal,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// ErrUnknownStatus is returned for status values outside the known set.
var ErrUnknownStatus = errors.New("unknown status")

// UpdateStatus writes a new status and returns the updated rows, satisfying
// the contract the dashboard sync core consumes: the returned rows carry the
// database-authoritative updated_at. Zero rows affected is pgx.ErrNoRows.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus, updatedAt time.Time) ([]domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, ErrUnknownStatus
	}
	previous, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	rows, err := s.tickets.UpdateStatus(ctx, ticketID, status, updatedAt)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Actor:    events.Actor{Type: domain.AuthorTypeAdmin},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: previous.Status,
			NewStatus: rows[0].Status,
			UpdatedAt: rows[0].UpdatedAt,
		},
	})
	return rows, nil
}

// ListAll returns every ticket, newest first, for full dashboard refreshes.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.ListAll(ctx)
}

func (s *TicketService) loadWithAttachments(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	ticket.Attachments = attachments
	return ticket, nil
}

func generateReference() string {
	return "SPB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requesterActor(email string) events.Actor {
	return events.Actor{
		Type:  domain.AuthorTypeRequester,
		Email: &email,
	}
}

func actorFor(author domain.AuthorType, adminID, email string) events.Actor {
	if author == domain.AuthorTypeAdmin {
		actor := events.Actor{Type: domain.AuthorTypeAdmin}
		if adminID != "" {
			actor.AdminID = &adminID
		}
		return actor
	}
	return requesterActor(email)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
