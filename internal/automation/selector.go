package automation

import (
	"sort"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// SelectRules filters rules eligible for a trigger against a ticket
// snapshot and orders them for execution: active rules whose trigger
// matches and whose team scope is either unset or equal to the ticket's
// team, ascending by priority. Ties break by creation time then rule ID so
// the order is deterministic. Every selected rule whose condition passes
// executes; selection is not first-match-wins.
func SelectRules(trigger domain.TriggerType, rules []domain.AutomationRule, snapshot *domain.TicketSnapshot) []domain.AutomationRule {
	matched := make([]domain.AutomationRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsActive || rule.Trigger != trigger {
			continue
		}
		if rule.TeamScope != nil {
			if snapshot.TeamID == nil || *rule.TeamScope != *snapshot.TeamID {
				continue
			}
		}
		matched = append(matched, rule)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched
}
