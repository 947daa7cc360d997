package events

import (
	"time"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// EventType enumerates engine event identifiers.
type EventType string

const (
	EventAutomationApplied   EventType = "automation_applied"
	EventAutomationFailed    EventType = "automation_task_failed"
	EventSlaThresholdCrossed EventType = "sla_threshold_crossed"
)

// Event represents an engine event published to subscribers.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AutomationAppliedPayload payload.
type AutomationAppliedPayload struct {
	RuleID  string             `json:"rule_id"`
	Trigger domain.TriggerType `json:"trigger"`
	Actions []string           `json:"actions"`
}

// AutomationFailedPayload payload.
type AutomationFailedPayload struct {
	TaskID   string             `json:"task_id"`
	Trigger  domain.TriggerType `json:"trigger"`
	Attempts int                `json:"attempts"`
	Error    string             `json:"error"`
}

// SlaThresholdCrossedPayload payload for the outbound notification
// contract: emitted exactly once per (ticket, kind, sub-clock) tuple for
// the lifetime of a SlaInstance.
type SlaThresholdCrossedPayload struct {
	Kind     domain.ThresholdKind `json:"kind"`
	SubClock domain.SubClock      `json:"sub_clock"`
	DueAt    time.Time            `json:"due_at"`
}
