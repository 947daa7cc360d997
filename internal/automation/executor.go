package automation

import (
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// Executor maps automation actions to mutation intents. It emits intents
// only; all writing happens in the ticket store, so building intents twice
// from the same snapshot is trivially idempotent.
type Executor struct {
	logger *zap.Logger
}

// NewExecutor constructs an executor.
func NewExecutor(logger *zap.Logger) *Executor {
	return &Executor{logger: logger}
}

// BuildIntent converts one action into a mutation intent, or nil when the
// snapshot already satisfies the action (assigning the current team twice
// is a no-op). A malformed or unknown action also yields nil with a
// warning, never an error that would abort sibling rules.
func (e *Executor) BuildIntent(snapshot *domain.TicketSnapshot, action domain.AutomationAction) *domain.MutationIntent {
	switch action.Type {
	case domain.ActionAssignTeam:
		if action.TeamID == "" {
			e.logger.Warn("assign_team action missing team id", zap.String("ticket_id", snapshot.ID))
			return nil
		}
		if snapshot.TeamID != nil && *snapshot.TeamID == action.TeamID {
			return nil
		}
		return e.intent(snapshot, domain.MutationTeam, action.TeamID)
	case domain.ActionAssignUser:
		if action.UserID == "" {
			e.logger.Warn("assign_user action missing user id", zap.String("ticket_id", snapshot.ID))
			return nil
		}
		if snapshot.AssigneeID != nil && *snapshot.AssigneeID == action.UserID {
			return nil
		}
		return e.intent(snapshot, domain.MutationAssignee, action.UserID)
	case domain.ActionSetPriority:
		if action.Priority == "" {
			e.logger.Warn("set_priority action missing priority", zap.String("ticket_id", snapshot.ID))
			return nil
		}
		if snapshot.Priority == action.Priority {
			return nil
		}
		return e.intent(snapshot, domain.MutationPriority, string(action.Priority))
	case domain.ActionSetStatus:
		if action.Status == "" {
			e.logger.Warn("set_status action missing status", zap.String("ticket_id", snapshot.ID))
			return nil
		}
		if snapshot.Status == action.Status {
			return nil
		}
		return e.intent(snapshot, domain.MutationStatus, string(action.Status))
	default:
		e.logger.Warn("unsupported action type",
			zap.String("ticket_id", snapshot.ID),
			zap.String("action_type", string(action.Type)))
		return nil
	}
}

func (e *Executor) intent(snapshot *domain.TicketSnapshot, field domain.MutationField, value any) *domain.MutationIntent {
	return &domain.MutationIntent{
		TicketID:        snapshot.ID,
		Field:           field,
		Value:           value,
		ExpectedVersion: snapshot.Version,
	}
}
