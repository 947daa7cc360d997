package domain

import "time"

// AuditOutcome captures how a rule application ended.
type AuditOutcome string

const (
	AuditOutcomeApplied AuditOutcome = "APPLIED"
	AuditOutcomeSkipped AuditOutcome = "SKIPPED"
	AuditOutcomeFailed  AuditOutcome = "FAILED"
)

// AutomationAudit is an immutable record of one rule's execution within a
// dispatch. Writes are best-effort: a failed audit insert never fails the
// automation run itself.
type AutomationAudit struct {
	ID        string
	TicketID  string
	RuleID    string
	Trigger   TriggerType
	Outcome   AuditOutcome
	Detail    map[string]any
	CreatedAt time.Time
}
