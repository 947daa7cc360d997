package automation

import (
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

func TestBuildIntentProducesMutation(t *testing.T) {
	exec := NewExecutor(zap.NewNop())
	snapshot := testSnapshot()

	intent := exec.BuildIntent(snapshot, domain.AutomationAction{
		Type:     domain.ActionSetPriority,
		Priority: domain.TicketPriorityUrgent,
	})
	if intent == nil {
		t.Fatalf("expected an intent")
	}
	if intent.Field != domain.MutationPriority || intent.Value != "URGENT" {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if intent.ExpectedVersion != snapshot.Version {
		t.Fatalf("intent should carry the snapshot version")
	}
}

func TestBuildIntentNoopWhenAlreadySatisfied(t *testing.T) {
	exec := NewExecutor(zap.NewNop())
	snapshot := testSnapshot()

	cases := []domain.AutomationAction{
		{Type: domain.ActionAssignTeam, TeamID: "team-payments"},
		{Type: domain.ActionSetPriority, Priority: domain.TicketPriorityHigh},
		{Type: domain.ActionSetStatus, Status: domain.TicketStatusOpen},
	}
	for _, action := range cases {
		if intent := exec.BuildIntent(snapshot, action); intent != nil {
			t.Fatalf("action %s already satisfied, got intent %+v", action.Type, intent)
		}
	}
}

func TestBuildIntentMalformedActionIsNil(t *testing.T) {
	exec := NewExecutor(zap.NewNop())
	snapshot := testSnapshot()

	cases := []domain.AutomationAction{
		{Type: domain.ActionAssignTeam},
		{Type: domain.ActionAssignUser},
		{Type: domain.ActionSetPriority},
		{Type: domain.ActionSetStatus},
		{Type: "PLAY_SOUND"},
	}
	for _, action := range cases {
		if intent := exec.BuildIntent(snapshot, action); intent != nil {
			t.Fatalf("malformed action %s should yield nil, got %+v", action.Type, intent)
		}
	}
}

func TestBuildIntentAssignUser(t *testing.T) {
	exec := NewExecutor(zap.NewNop())
	snapshot := testSnapshot()

	intent := exec.BuildIntent(snapshot, domain.AutomationAction{
		Type:   domain.ActionAssignUser,
		UserID: "agent-7",
	})
	if intent == nil || intent.Field != domain.MutationAssignee || intent.Value != "agent-7" {
		t.Fatalf("unexpected intent %+v", intent)
	}

	assignee := "agent-7"
	snapshot.AssigneeID = &assignee
	if intent := exec.BuildIntent(snapshot, domain.AutomationAction{Type: domain.ActionAssignUser, UserID: "agent-7"}); intent != nil {
		t.Fatalf("re-assigning the current assignee should be a no-op")
	}
}
