package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spybee/helpdesk/internal/api/dto"
	"github.com/spybee/helpdesk/internal/auth"
	"github.com/spybee/helpdesk/internal/domain"
	"github.com/spybee/helpdesk/internal/repository"
	"github.com/spybee/helpdesk/internal/service"
	apperrors "github.com/spybee/helpdesk/pkg/util"
)

// AdminHandler serves authentication plus the table-view ticket endpoints of
// the dashboard.
type AdminHandler struct {
	authService   *service.AuthService
	ticketService *service.TicketService
	notifications *service.NotificationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, ticketService *service.TicketService, notifications *service.NotificationService) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		ticketService: ticketService,
		notifications: notifications,
	}
}

// Login POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	admin, token, exp, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		AdminID:   admin.ID,
		Name:      admin.Name,
	}})
}

// Register POST /admin/register creates a dashboard account.
func (h *AdminHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return apperrors.NewValidationError("name, email and a password of at least 8 characters required", nil)
	}
	admin, err := h.authService.RegisterAdmin(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if strings.Contains(err.Error(), "already registered") {
			return apperrors.NewConflict("email already registered", nil)
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":    admin.ID,
		"name":  admin.Name,
		"email": admin.Email,
	}})
}

// ListTickets GET /admin/tickets serves the filterable table view.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	tickets, err := h.ticketService.ListTickets(c.Context(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /admin/tickets/:id returns the full thread, internal notes
// included.
func (h *AdminHandler) GetTicket(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	ticket, comments, err := h.ticketService.GetTicketForAdmin(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, comments)})
}

// AddComment POST /admin/tickets/:id/comments posts a reply or internal note.
func (h *AdminHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	comment, err := h.ticketService.AddComment(c.Context(), domain.AuthorTypeAdmin, principal.Admin.ID, principal.Admin.Name, "", c.Params("id"), service.CommentInput{
		Body:     req.Body,
		Internal: req.Internal,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// Stats GET /admin/stats returns per-status totals.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	counts, err := h.ticketService.CountByStatus(c.Context())
	if err != nil {
		return err
	}
	stats := make(map[string]int, len(counts))
	for status, count := range counts {
		stats[string(status)] = count
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Notifications GET /admin/notifications returns the recent toast feed.
func (h *AdminHandler) Notifications(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	limit := parseIntQuery(c.Query("limit"), 20)
	entries, err := h.notifications.Recent(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" && statusStr != "all" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.TicketCategory(strings.TrimSpace(part)))
		}
	}
	if project := c.Query("project"); project != "" {
		filter.Project = &project
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseIntQuery(c.Query("page"), 1)
	pageSize := parseIntQuery(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
