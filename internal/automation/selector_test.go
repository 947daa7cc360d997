package automation

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

func ruleWith(id string, priority int, opts func(*domain.AutomationRule)) domain.AutomationRule {
	rule := domain.AutomationRule{
		ID:       id,
		Name:     id,
		Trigger:  domain.TriggerTicketCreated,
		Priority: priority,
		IsActive: true,
	}
	if opts != nil {
		opts(&rule)
	}
	return rule
}

func TestSelectRulesFiltersAndOrders(t *testing.T) {
	snapshot := testSnapshot()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rules := []domain.AutomationRule{
		ruleWith("r-late", 20, nil),
		ruleWith("r-early", 5, nil),
		ruleWith("r-inactive", 1, func(r *domain.AutomationRule) { r.IsActive = false }),
		ruleWith("r-other-trigger", 1, func(r *domain.AutomationRule) { r.Trigger = domain.TriggerSlaBreached }),
		ruleWith("r-other-team", 1, func(r *domain.AutomationRule) { r.TeamScope = strPtr("team-network") }),
		ruleWith("r-scoped", 5, func(r *domain.AutomationRule) {
			r.TeamScope = strPtr("team-payments")
			r.CreatedAt = base.Add(time.Hour)
		}),
	}
	rules[1].CreatedAt = base

	selected := SelectRules(domain.TriggerTicketCreated, rules, snapshot)

	want := []string{"r-early", "r-scoped", "r-late"}
	if len(selected) != len(want) {
		t.Fatalf("selected %d rules, want %d", len(selected), len(want))
	}
	for i, id := range want {
		if selected[i].ID != id {
			t.Fatalf("selected[%d] = %s, want %s", i, selected[i].ID, id)
		}
	}
}

func TestSelectRulesScopedRuleSkipsTeamlessTicket(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.TeamID = nil

	rules := []domain.AutomationRule{
		ruleWith("r-scoped", 1, func(r *domain.AutomationRule) { r.TeamScope = strPtr("team-payments") }),
		ruleWith("r-global", 2, nil),
	}

	selected := SelectRules(domain.TriggerTicketCreated, rules, snapshot)
	if len(selected) != 1 || selected[0].ID != "r-global" {
		t.Fatalf("teamless ticket should only match unscoped rules, got %v", selected)
	}
}

func TestSelectRulesTieBreaksById(t *testing.T) {
	snapshot := testSnapshot()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rules := []domain.AutomationRule{
		ruleWith("r-b", 10, func(r *domain.AutomationRule) { r.CreatedAt = created }),
		ruleWith("r-a", 10, func(r *domain.AutomationRule) { r.CreatedAt = created }),
	}

	selected := SelectRules(domain.TriggerTicketCreated, rules, snapshot)
	if selected[0].ID != "r-a" || selected[1].ID != "r-b" {
		t.Fatalf("equal priority and creation time should order by id, got %s, %s", selected[0].ID, selected[1].ID)
	}
}
