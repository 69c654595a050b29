package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spybee/helpdesk/internal/api/dto"
	"github.com/spybee/helpdesk/internal/auth"
	"github.com/spybee/helpdesk/internal/dashboard"
	"github.com/spybee/helpdesk/internal/sync"
	apperrors "github.com/spybee/helpdesk/pkg/util"
)

// DashboardHandler exposes the session-scoped kanban board: open a session,
// read the board, drag-drop cards, change status, refresh.
type DashboardHandler struct {
	registry *dashboard.Registry
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(registry *dashboard.Registry) *DashboardHandler {
	return &DashboardHandler{registry: registry}
}

// OpenSession POST /admin/dashboard/sessions.
func (h *DashboardHandler) OpenSession(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	session, err := h.registry.Open(c.Context(), principal.Admin.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SessionResponse{
		SessionID: session.ID,
		Tickets:   session.Store.Len(),
	}})
}

// CloseSession DELETE /admin/dashboard/sessions/:session.
func (h *DashboardHandler) CloseSession(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	h.registry.Close(session.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

// Board GET /admin/dashboard/sessions/:session/board.
func (h *DashboardHandler) Board(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	session.Touch()
	return c.JSON(fiber.Map{"data": boardResponse(session)})
}

// Refresh POST /admin/dashboard/sessions/:session/refresh rebuilds the
// session store from the database.
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	session.Touch()
	if err := session.Board.Refresh(c.Context()); err != nil {
		return apperrors.NewUnavailable("could not refresh tickets")
	}
	return c.JSON(fiber.Map{"data": boardResponse(session)})
}

// Drop POST /admin/dashboard/sessions/:session/drop applies a drag gesture.
func (h *DashboardHandler) Drop(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	session.Touch()

	var req dto.DropRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	if err := session.Board.OnDrop(c.Context(), req.SourceColumn, req.DestColumn, req.TicketID); err != nil {
		return mapSyncError(err)
	}
	return c.JSON(fiber.Map{"data": boardResponse(session)})
}

// ChangeStatus POST /admin/dashboard/sessions/:session/status is the table
// view's direct status select, going through the same coordinator semantics.
func (h *DashboardHandler) ChangeStatus(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	session.Touch()

	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" || req.Status == "" {
		return apperrors.NewValidationError("ticket_id and status required", nil)
	}
	current, ok := session.Store.Get(req.TicketID)
	if !ok {
		return apperrors.NewNotFound("ticket", fiber.Map{"ticket_id": req.TicketID})
	}
	if err := session.Board.OnDrop(c.Context(), sync.ColumnForStatus(current.Status), sync.ColumnForStatus(req.Status), req.TicketID); err != nil {
		return mapSyncError(err)
	}
	return c.JSON(fiber.Map{"data": boardResponse(session)})
}

func (h *DashboardHandler) session(c *fiber.Ctx) (*dashboard.Session, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return nil, apperrors.NewUnauthorized("admin required")
	}
	session, ok := h.registry.Get(c.Params("session"))
	if !ok {
		return nil, apperrors.NewNotFound("dashboard session", nil)
	}
	if session.AdminID != principal.Admin.ID {
		return nil, apperrors.NewForbidden("session belongs to another admin")
	}
	return session, nil
}

func mapSyncError(err error) error {
	if errors.Is(err, sync.ErrUpdateInFlight) {
		return apperrors.NewConflict("a status change is already in flight for this ticket", nil)
	}
	switch sync.KindOf(err) {
	case sync.KindNotFound:
		return apperrors.NewNotFound("ticket", nil)
	case sync.KindRejected:
		return apperrors.NewValidationError("status change rejected", nil)
	default:
		return apperrors.NewUnavailable("ticket service unavailable, change was rolled back")
	}
}

func boardResponse(session *dashboard.Session) dto.BoardResponse {
	columns := make(map[string][]dto.TicketSummary, 3)
	for column, tickets := range session.Board.Columns() {
		items := make([]dto.TicketSummary, 0, len(tickets))
		for i := range tickets {
			items = append(items, ticketSummary(&tickets[i]))
		}
		columns[column] = items
	}
	stats := make(map[string]int, 3)
	for status, count := range dashboard.Stats(session.Store) {
		stats[string(status)] = count
	}
	return dto.BoardResponse{Columns: columns, Stats: stats}
}
