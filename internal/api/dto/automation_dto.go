package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// SaveRuleRequest payload for rule create/update.
type SaveRuleRequest struct {
	Name          string                    `json:"name"`
	Trigger       domain.TriggerType        `json:"trigger"`
	ConditionTree domain.ConditionNode      `json:"condition_tree"`
	Actions       []domain.AutomationAction `json:"actions"`
	Priority      int                       `json:"priority"`
	IsActive      bool                      `json:"is_active"`
	TeamScope     *string                   `json:"team_scope"`
}

// RuleResponse full rule representation.
type RuleResponse struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	Trigger       domain.TriggerType        `json:"trigger"`
	ConditionTree domain.ConditionNode      `json:"condition_tree"`
	Actions       []domain.AutomationAction `json:"actions"`
	Priority      int                       `json:"priority"`
	IsActive      bool                      `json:"is_active"`
	TeamScope     *string                   `json:"team_scope"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// AuditResponse one automation execution record.
type AuditResponse struct {
	ID        string              `json:"id"`
	TicketID  string              `json:"ticket_id"`
	RuleID    string              `json:"rule_id"`
	Trigger   domain.TriggerType  `json:"trigger"`
	Outcome   domain.AuditOutcome `json:"outcome"`
	Detail    map[string]any      `json:"detail,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
