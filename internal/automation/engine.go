package automation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/events"
	"github.com/spec-kit/helpdesk-automation/internal/observability"
	"github.com/spec-kit/helpdesk-automation/pkg/util"
)

// ErrConflict is returned by the ticket store when a mutation's expected
// version no longer matches the stored row. It is retryable within the
// dispatcher's retry budget.
var ErrConflict = errors.New("ticket mutation conflict")

// TicketStore is the ticket-management collaborator contract the engine
// depends on: a single point-in-time snapshot read and a transactional
// per-record mutation write.
type TicketStore interface {
	GetSnapshot(ctx context.Context, ticketID string) (*domain.TicketSnapshot, error)
	ApplyMutation(ctx context.Context, intent *domain.MutationIntent) error
}

// RuleSource provides the rule set for a trigger. Read-only to the engine.
type RuleSource interface {
	ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.AutomationRule, error)
}

// AuditSink records rule execution outcomes. Writes are best-effort.
type AuditSink interface {
	Record(ctx context.Context, entry *domain.AutomationAudit) error
}

// Engine runs one unit of automation work: select matching rules, confirm
// their conditions, build mutation intents, and apply them through the
// ticket store in ascending priority order.
type Engine struct {
	rules     RuleSource
	tickets   TicketStore
	audit     AuditSink
	evaluator *Evaluator
	executor  *Executor
	events    events.Dispatcher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// EngineDependencies bundles collaborators for the engine.
type EngineDependencies struct {
	Rules   RuleSource
	Tickets TicketStore
	Audit   AuditSink
	Events  events.Dispatcher
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewEngine constructs the engine.
func NewEngine(deps EngineDependencies) *Engine {
	return &Engine{
		rules:     deps.Rules,
		tickets:   deps.Tickets,
		audit:     deps.Audit,
		evaluator: NewEvaluator(deps.Logger),
		executor:  NewExecutor(deps.Logger),
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Run executes every matching rule for one (ticket, trigger) pair against
// the snapshot taken at dispatch time. Earlier rules' mutations do not
// re-enter evaluation of later rules. A failure in one rule is logged and
// isolated; Run still returns an error when any mutation conflicted or
// failed so a queued dispatch can retry (intents are idempotent, so a
// retried dispatch re-applies safely).
func (e *Engine) Run(ctx context.Context, ticketID string, trigger domain.TriggerType) error {
	snapshot, err := e.tickets.GetSnapshot(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("load ticket snapshot: %w", err)
	}
	rules, err := e.rules.ListByTrigger(ctx, trigger)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	matched := SelectRules(trigger, rules, snapshot)
	var failed int
	for _, rule := range matched {
		if !e.evaluator.Evaluate(snapshot, rule.ConditionTree) {
			e.recordAudit(ctx, snapshot.ID, rule, trigger, domain.AuditOutcomeSkipped, nil)
			continue
		}
		if err := e.applyRule(ctx, snapshot, rule, trigger); err != nil {
			failed++
			e.logger.Error("rule application failed",
				zap.String("ticket_id", snapshot.ID),
				zap.String("rule_id", rule.ID),
				zap.String("trigger", string(trigger)),
				zap.Error(err))
		}
	}

	if e.metrics != nil {
		e.metrics.RecordDispatch(string(trigger), len(matched), failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d matched rules failed", failed, len(matched))
	}
	return nil
}

func (e *Engine) applyRule(ctx context.Context, snapshot *domain.TicketSnapshot, rule domain.AutomationRule, trigger domain.TriggerType) error {
	applied := make([]string, 0, len(rule.Actions))
	for _, action := range rule.Actions {
		intent := e.executor.BuildIntent(snapshot, action)
		if intent == nil {
			continue
		}
		if err := e.tickets.ApplyMutation(ctx, intent); err != nil {
			e.recordAudit(ctx, snapshot.ID, rule, trigger, domain.AuditOutcomeFailed, map[string]any{
				"action": string(action.Type),
				"error":  err.Error(),
			})
			return err
		}
		// Each applied mutation bumps the row version by one; later
		// intents in this dispatch must expect the bumped value or they
		// would conflict with their own dispatch.
		snapshot.Version++
		applied = append(applied, string(action.Type))
	}

	e.recordAudit(ctx, snapshot.ID, rule, trigger, domain.AuditOutcomeApplied, map[string]any{
		"actions": applied,
	})
	e.publishApplied(ctx, snapshot.ID, rule, trigger, applied)
	return nil
}

func (e *Engine) recordAudit(ctx context.Context, ticketID string, rule domain.AutomationRule, trigger domain.TriggerType, outcome domain.AuditOutcome, detail map[string]any) {
	if e.audit == nil {
		return
	}
	entry := &domain.AutomationAudit{
		TicketID: ticketID,
		RuleID:   rule.ID,
		Trigger:  trigger,
		Outcome:  outcome,
		Detail:   detail,
	}
	util.BestEffort(e.logger, "automation audit write", func() error {
		return e.audit.Record(ctx, entry)
	})
}

func (e *Engine) publishApplied(ctx context.Context, ticketID string, rule domain.AutomationRule, trigger domain.TriggerType, actions []string) {
	if e.events == nil || len(actions) == 0 {
		return
	}
	_ = e.events.Publish(ctx, events.Event{
		Type:     events.EventAutomationApplied,
		TicketID: ticketID,
		Payload: events.AutomationAppliedPayload{
			RuleID:  rule.ID,
			Trigger: trigger,
			Actions: actions,
		},
	})
}
