package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/api/dto"
	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/service"
	apperrors "github.com/spec-kit/helpdesk-automation/pkg/util"
)

// EventsHandler ingests ticket lifecycle signals from the ticket-management
// collaborator. Ingestion is accepted once the dispatch is submitted; rule
// execution itself happens asynchronously.
type EventsHandler struct {
	automation *service.AutomationService
	sla        *service.SlaService
	logger     *zap.Logger
}

// NewEventsHandler constructs handler.
func NewEventsHandler(automationService *service.AutomationService, slaService *service.SlaService, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{automation: automationService, sla: slaService, logger: logger}
}

// TicketCreated POST /events/ticket-created.
func (h *EventsHandler) TicketCreated(c *fiber.Ctx) error {
	var req dto.TicketCreatedRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketID) == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}

	// A ticket without a matching SLA policy still runs automations.
	if err := h.sla.HandleTicketCreated(c.Context(), req.TicketID); err != nil {
		if apperrors.ToDomainError(err).HTTPStatus != http.StatusNotFound {
			return err
		}
		h.logger.Warn("no sla policy for ticket, skipping sla instance",
			zap.String("ticket_id", req.TicketID))
	}

	if err := h.automation.SubmitAutomation(c.Context(), req.TicketID, domain.TriggerTicketCreated); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// StatusChanged POST /events/status-changed.
func (h *EventsHandler) StatusChanged(c *fiber.Ctx) error {
	var req dto.StatusChangedRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketID) == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	if !domain.KnownStatus(req.OldStatus) || !domain.KnownStatus(req.NewStatus) {
		return apperrors.NewValidationError("unknown status", map[string]any{
			"old_status": req.OldStatus, "new_status": req.NewStatus,
		})
	}

	if err := h.sla.HandleStatusChanged(c.Context(), req.TicketID, req.OldStatus, req.NewStatus); err != nil {
		if apperrors.ToDomainError(err).HTTPStatus != http.StatusNotFound {
			return err
		}
		h.logger.Warn("no sla instance for ticket, skipping clock update",
			zap.String("ticket_id", req.TicketID))
	}

	if err := h.automation.SubmitAutomation(c.Context(), req.TicketID, domain.TriggerStatusChanged); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// FirstResponse POST /events/first-response.
func (h *EventsHandler) FirstResponse(c *fiber.Ctx) error {
	var req dto.FirstResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketID) == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	if err := h.sla.HandleFirstResponse(c.Context(), req.TicketID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}
