package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-automation/internal/api/dto"
	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/service"
	apperrors "github.com/spec-kit/helpdesk-automation/pkg/util"
)

// RulesHandler manages automation rule administration endpoints.
type RulesHandler struct {
	service *service.AutomationService
}

// NewRulesHandler constructs handler.
func NewRulesHandler(automationService *service.AutomationService) *RulesHandler {
	return &RulesHandler{service: automationService}
}

// CreateRule POST /admin/rules.
func (h *RulesHandler) CreateRule(c *fiber.Ctx) error {
	var req dto.SaveRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := ruleFromRequest(req)
	if err := h.service.CreateRule(c.Context(), rule); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ruleResponse(rule)})
}

// UpdateRule PUT /admin/rules/:id.
func (h *RulesHandler) UpdateRule(c *fiber.Ctx) error {
	var req dto.SaveRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := ruleFromRequest(req)
	rule.ID = c.Params("id")
	if err := h.service.UpdateRule(c.Context(), rule); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ruleResponse(rule)})
}

// DeleteRule DELETE /admin/rules/:id.
func (h *RulesHandler) DeleteRule(c *fiber.Ctx) error {
	if err := h.service.DeleteRule(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetRule GET /admin/rules/:id.
func (h *RulesHandler) GetRule(c *fiber.Ctx) error {
	rule, err := h.service.GetRule(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ruleResponse(rule)})
}

// ListRules GET /admin/rules.
func (h *RulesHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.service.ListRules(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.RuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, *ruleResponse(&rules[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListFailedTasks GET /admin/tasks/failed.
func (h *RulesHandler) ListFailedTasks(c *fiber.Ctx) error {
	tasks, err := h.service.ListFailedTasks(c.Context(), queryInt(c, "limit", 100))
	if err != nil {
		return err
	}
	items := make([]dto.FailedTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, dto.FailedTaskResponse{
			ID:        task.ID,
			TicketID:  task.TicketID,
			Trigger:   task.Trigger,
			Attempts:  task.Attempts,
			LastError: task.LastError,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAudit GET /tickets/:id/audit.
func (h *RulesHandler) ListAudit(c *fiber.Ctx) error {
	entries, err := h.service.ListAuditByTicket(c.Context(), c.Params("id"), queryInt(c, "limit", 100))
	if err != nil {
		return err
	}
	items := make([]dto.AuditResponse, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		items = append(items, dto.AuditResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			RuleID:    entry.RuleID,
			Trigger:   entry.Trigger,
			Outcome:   entry.Outcome,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func queryInt(c *fiber.Ctx, name string, def int) int {
	val := c.Query(name)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ruleFromRequest(req dto.SaveRuleRequest) *domain.AutomationRule {
	return &domain.AutomationRule{
		Name:          req.Name,
		Trigger:       req.Trigger,
		ConditionTree: req.ConditionTree,
		Actions:       req.Actions,
		Priority:      req.Priority,
		IsActive:      req.IsActive,
		TeamScope:     req.TeamScope,
	}
}

func ruleResponse(rule *domain.AutomationRule) *dto.RuleResponse {
	return &dto.RuleResponse{
		ID:            rule.ID,
		Name:          rule.Name,
		Trigger:       rule.Trigger,
		ConditionTree: rule.ConditionTree,
		Actions:       rule.Actions,
		Priority:      rule.Priority,
		IsActive:      rule.IsActive,
		TeamScope:     rule.TeamScope,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}
}
