package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spybee/helpdesk/internal/api/dto"
	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/service"
	apperrors "github.com/spybee/helpdesk/pkg/util"
)

// TicketsHandler manages the public (requester-facing) ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("name, email, description required", nil)
	}

	input := service.TicketCreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Project:     req.Project,
		Category:    req.Category,
		Description: req.Description,
	}
	for _, att := range req.Attachments {
		input.Attachments = append(input.Attachments, service.AttachmentInput{
			FileName: att.FileName,
			FileURL:  att.FileURL,
		})
	}
	ticket, err := h.service.CreateTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets?email= tracks tickets by requester email.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	email := c.Query("email")
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email query parameter required", nil)
	}
	tickets, err := h.service.ListTicketsByEmail(c.Context(), email)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id?email= returns a ticket with its public thread.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	email := c.Query("email")
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email query parameter required", nil)
	}
	ticket, comments, err := h.service.GetTicketForRequester(c.Context(), c.Params("id"), email)
	if err != nil {
		if err.Error() == "access denied" {
			return apperrors.NewForbidden("access denied")
		}
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, comments)})
}

// GetTicketByReference GET /tickets/reference/:reference.
func (h *TicketsHandler) GetTicketByReference(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicketByReference(c.Context(), c.Params("reference"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments posts a public requester comment.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	comment, err := h.service.AddComment(c.Context(), domain.AuthorTypeRequester, "", req.Name, req.Email, c.Params("id"), service.CommentInput{
		Body: req.Body,
	})
	if err != nil {
		if err.Error() == "access denied" {
			return apperrors.NewForbidden("access denied")
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        ticket.ID,
		Reference: ticket.Reference,
		Name:      ticket.Name,
		Email:     ticket.Email,
		Project:   ticket.Project,
		Category:  ticket.Category,
		Status:    ticket.Status,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.Comment) dto.TicketDetailResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(ticket.Attachments))
	for _, att := range ticket.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:       att.ID,
			FileName: att.FileName,
			FileURL:  att.FileURL,
		})
	}
	thread := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		thread = append(thread, commentResponse(&comments[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Reference:   ticket.Reference,
		Name:        ticket.Name,
		Email:       ticket.Email,
		Project:     ticket.Project,
		Category:    ticket.Category,
		Description: ticket.Description,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		Attachments: attachments,
		Comments:    thread,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		AuthorType: comment.AuthorType,
		AuthorName: comment.AuthorName,
		Body:       comment.Body,
		Internal:   comment.Internal,
		CreatedAt:  comment.CreatedAt,
	}
}
