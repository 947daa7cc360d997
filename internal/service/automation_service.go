package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-automation/internal/dispatch"
	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-automation/pkg/util"
)

// AutomationService owns rule administration and the automation
// submission entry point. Rules are validated against the closed
// field/operator vocabulary at save time, so an unknown field is a
// validation error here rather than a runtime surprise in the evaluator.
type AutomationService struct {
	rules      repository.RuleRepository
	audits     repository.AuditRepository
	dispatcher dispatch.Dispatcher
	queue      *dispatch.TaskQueue
}

// AutomationDependencies bundles collaborators.
type AutomationDependencies struct {
	RuleRepo   repository.RuleRepository
	AuditRepo  repository.AuditRepository
	Dispatcher dispatch.Dispatcher
	Queue      *dispatch.TaskQueue
}

// NewAutomationService constructs the service.
func NewAutomationService(deps AutomationDependencies) *AutomationService {
	return &AutomationService{
		rules:      deps.RuleRepo,
		audits:     deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		queue:      deps.Queue,
	}
}

// SubmitAutomation accepts a (ticket, trigger) pair from the
// ticket-management collaborator. Fire-and-forget for the caller.
func (s *AutomationService) SubmitAutomation(ctx context.Context, ticketID string, trigger domain.TriggerType) error {
	if strings.TrimSpace(ticketID) == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	if !domain.KnownTrigger(trigger) {
		return apperrors.NewValidationError("unknown trigger", map[string]any{"trigger": trigger})
	}
	return s.dispatcher.Submit(ctx, ticketID, trigger)
}

// CreateRule validates and stores a new rule.
func (s *AutomationService) CreateRule(ctx context.Context, rule *domain.AutomationRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.rules.Create(ctx, rule)
}

// UpdateRule validates and replaces an existing rule.
func (s *AutomationService) UpdateRule(ctx context.Context, rule *domain.AutomationRule) error {
	if rule.ID == "" {
		return apperrors.NewValidationError("rule id required", nil)
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// DeleteRule removes a rule.
func (s *AutomationService) DeleteRule(ctx context.Context, id string) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetRule fetches one rule.
func (s *AutomationService) GetRule(ctx context.Context, id string) (*domain.AutomationRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rule, nil
}

// ListRules returns all rules ordered by priority.
func (s *AutomationService) ListRules(ctx context.Context) ([]domain.AutomationRule, error) {
	return s.rules.List(ctx)
}

// ListAuditByTicket returns the automation execution trail for a ticket.
func (s *AutomationService) ListAuditByTicket(ctx context.Context, ticketID string, limit int) ([]domain.AutomationAudit, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, apperrors.NewValidationError("ticket_id required", nil)
	}
	return s.audits.ListByTicket(ctx, ticketID, limit)
}

// ListFailedTasks returns recent tasks that exhausted their retry budget.
func (s *AutomationService) ListFailedTasks(ctx context.Context, limit int) ([]dispatch.Task, error) {
	if s.queue == nil {
		return []dispatch.Task{}, nil
	}
	return s.queue.ListFailed(ctx, limit)
}

func validateRule(rule *domain.AutomationRule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return apperrors.NewValidationError("rule name required", nil)
	}
	if !domain.KnownTrigger(rule.Trigger) {
		return apperrors.NewValidationError("unknown trigger", map[string]any{"trigger": rule.Trigger})
	}
	if len(rule.Actions) == 0 {
		return apperrors.NewValidationError("rule requires at least one action", nil)
	}
	if err := validateNode(rule.ConditionTree, "condition"); err != nil {
		return err
	}
	for i, action := range rule.Actions {
		if err := validateAction(action); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("action %d invalid", i), map[string]any{"cause": err.Error()})
		}
	}
	return nil
}

func validateNode(node domain.ConditionNode, path string) error {
	switch node.Kind {
	case domain.NodeAnd, domain.NodeOr:
		for i, child := range node.Children {
			if err := validateNode(child, fmt.Sprintf("%s.%d", path, i)); err != nil {
				return err
			}
		}
		return nil
	case domain.NodeLeaf:
		if !domain.KnownField(node.Field) {
			return apperrors.NewValidationError("unknown condition field", map[string]any{
				"path": path, "field": node.Field,
			})
		}
		if node.Field == domain.FieldCustom && strings.TrimSpace(node.CustomFieldKey) == "" {
			return apperrors.NewValidationError("custom field condition requires custom_field_key", map[string]any{"path": path})
		}
		if !domain.KnownOperator(node.Operator) {
			return apperrors.NewValidationError("unknown condition operator", map[string]any{
				"path": path, "operator": node.Operator,
			})
		}
		return nil
	default:
		return apperrors.NewValidationError("unknown condition node kind", map[string]any{
			"path": path, "kind": node.Kind,
		})
	}
}

func validateAction(action domain.AutomationAction) error {
	switch action.Type {
	case domain.ActionAssignTeam:
		if action.TeamID == "" {
			return fmt.Errorf("assign_team requires team_id")
		}
	case domain.ActionAssignUser:
		if action.UserID == "" {
			return fmt.Errorf("assign_user requires user_id")
		}
	case domain.ActionSetPriority:
		if action.Priority == "" {
			return fmt.Errorf("set_priority requires priority")
		}
	case domain.ActionSetStatus:
		if action.Status == "" {
			return fmt.Errorf("set_status requires status")
		}
	default:
		return fmt.Errorf("unsupported action type %q", action.Type)
	}
	return nil
}
