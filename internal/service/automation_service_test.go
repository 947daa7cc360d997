package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

type fakeRuleRepo struct {
	rules map[string]domain.AutomationRule
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[string]domain.AutomationRule)}
}

func (r *fakeRuleRepo) Create(ctx context.Context, rule *domain.AutomationRule) error {
	rule.ID = "r-" + rule.Name
	r.rules[rule.ID] = *rule
	return nil
}

func (r *fakeRuleRepo) Update(ctx context.Context, rule *domain.AutomationRule) error {
	if _, ok := r.rules[rule.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.rules[rule.ID] = *rule
	return nil
}

func (r *fakeRuleRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.rules[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rules, id)
	return nil
}

func (r *fakeRuleRepo) GetByID(ctx context.Context, id string) (*domain.AutomationRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &rule, nil
}

func (r *fakeRuleRepo) List(ctx context.Context) ([]domain.AutomationRule, error) {
	var result []domain.AutomationRule
	for _, rule := range r.rules {
		result = append(result, rule)
	}
	return result, nil
}

func (r *fakeRuleRepo) ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.AutomationRule, error) {
	return r.List(ctx)
}

func validRule() *domain.AutomationRule {
	return &domain.AutomationRule{
		Name:    "escalate-outages",
		Trigger: domain.TriggerTicketCreated,
		ConditionTree: domain.ConditionNode{
			Kind: domain.NodeAnd,
			Children: []domain.ConditionNode{
				{Kind: domain.NodeLeaf, Field: domain.FieldTags, Operator: domain.OperatorContains, Value: "outage"},
			},
		},
		Actions:  []domain.AutomationAction{{Type: domain.ActionSetPriority, Priority: domain.TicketPriorityUrgent}},
		Priority: 10,
		IsActive: true,
	}
}

func newTestAutomationService() (*AutomationService, *fakeRuleRepo, *fakeSubmitter) {
	rules := newFakeRuleRepo()
	submitter := &fakeSubmitter{}
	svc := NewAutomationService(AutomationDependencies{
		RuleRepo:   rules,
		Dispatcher: submitter,
	})
	return svc, rules, submitter
}

func TestCreateRuleStoresValidRule(t *testing.T) {
	svc, rules, _ := newTestAutomationService()

	rule := validRule()
	if err := svc.CreateRule(context.Background(), rule); err != nil {
		t.Fatalf("CreateRule() returned %v", err)
	}
	if len(rules.rules) != 1 {
		t.Fatalf("rule should be persisted")
	}
}

func TestCreateRuleValidation(t *testing.T) {
	svc, rules, _ := newTestAutomationService()

	cases := []struct {
		name   string
		mutate func(*domain.AutomationRule)
	}{
		{"missing name", func(r *domain.AutomationRule) { r.Name = " " }},
		{"unknown trigger", func(r *domain.AutomationRule) { r.Trigger = "TICKET_SNEEZED" }},
		{"no actions", func(r *domain.AutomationRule) { r.Actions = nil }},
		{"unknown condition field", func(r *domain.AutomationRule) {
			r.ConditionTree.Children[0].Field = "mystery"
		}},
		{"unknown operator", func(r *domain.AutomationRule) {
			r.ConditionTree.Children[0].Operator = "resembles"
		}},
		{"custom field without key", func(r *domain.AutomationRule) {
			r.ConditionTree.Children[0] = domain.ConditionNode{
				Kind: domain.NodeLeaf, Field: domain.FieldCustom, Operator: domain.OperatorIsSet,
			}
		}},
		{"malformed action", func(r *domain.AutomationRule) {
			r.Actions = []domain.AutomationAction{{Type: domain.ActionAssignTeam}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := validRule()
			tc.mutate(rule)
			if err := svc.CreateRule(context.Background(), rule); err == nil {
				t.Fatalf("invalid rule should be rejected")
			}
		})
	}
	if len(rules.rules) != 0 {
		t.Fatalf("no invalid rule may be persisted, got %d", len(rules.rules))
	}
}

func TestUpdateRuleRequiresId(t *testing.T) {
	svc, _, _ := newTestAutomationService()

	rule := validRule()
	if err := svc.UpdateRule(context.Background(), rule); err == nil {
		t.Fatalf("update without id should be rejected")
	}
}

func TestSubmitAutomationValidatesInput(t *testing.T) {
	svc, _, submitter := newTestAutomationService()

	if err := svc.SubmitAutomation(context.Background(), "", domain.TriggerTicketCreated); err == nil {
		t.Fatalf("blank ticket id should be rejected")
	}
	if err := svc.SubmitAutomation(context.Background(), "t-1", "TICKET_SNEEZED"); err == nil {
		t.Fatalf("unknown trigger should be rejected")
	}
	if err := svc.SubmitAutomation(context.Background(), "t-1", domain.TriggerStatusChanged); err != nil {
		t.Fatalf("valid submission returned %v", err)
	}
	if got := submitter.all(); len(got) != 1 || got[0] != "t-1/STATUS_CHANGED" {
		t.Fatalf("submission should reach the dispatcher, got %v", got)
	}
}
