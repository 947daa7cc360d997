package automation

import (
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

func strPtr(s string) *string { return &s }

func testSnapshot() *domain.TicketSnapshot {
	return &domain.TicketSnapshot{
		ID:          "t-1",
		Subject:     "Payment gateway is down",
		Description: "Checkout fails with a 502",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityHigh,
		Channel:     domain.ChannelEmail,
		TeamID:      strPtr("team-payments"),
		RequesterID: "user-9",
		Tags:        []string{"billing", "outage"},
		CustomFieldValues: map[string]any{
			"region":     "eu-west",
			"error_rate": 42.5,
		},
		Version: 1,
	}
}

func leaf(field domain.ConditionField, op domain.ConditionOperator, value any) domain.ConditionNode {
	return domain.ConditionNode{Kind: domain.NodeLeaf, Field: field, Operator: op, Value: value}
}

func TestEvaluateEmptyGroups(t *testing.T) {
	eval := NewEvaluator(zap.NewNop())
	snapshot := testSnapshot()

	if !eval.Evaluate(snapshot, domain.ConditionNode{Kind: domain.NodeAnd}) {
		t.Fatalf("empty And should evaluate to true")
	}
	if eval.Evaluate(snapshot, domain.ConditionNode{Kind: domain.NodeOr}) {
		t.Fatalf("empty Or should evaluate to false")
	}
}

func TestEvaluateLeafOperators(t *testing.T) {
	eval := NewEvaluator(zap.NewNop())
	snapshot := testSnapshot()

	cases := []struct {
		name string
		node domain.ConditionNode
		want bool
	}{
		{"equals priority", leaf(domain.FieldPriority, domain.OperatorEquals, "HIGH"), true},
		{"not equals status", leaf(domain.FieldStatus, domain.OperatorNotEquals, "CLOSED"), true},
		{"contains subject substring", leaf(domain.FieldSubject, domain.OperatorContains, "gateway"), true},
		{"contains is case-insensitive", leaf(domain.FieldSubject, domain.OperatorContains, "PAYMENT"), true},
		{"contains tag member", leaf(domain.FieldTags, domain.OperatorContains, "billing"), true},
		{"not contains tag", leaf(domain.FieldTags, domain.OperatorNotContains, "vip"), true},
		{"not contains present tag", leaf(domain.FieldTags, domain.OperatorNotContains, "billing"), false},
		{
			"not contains numeric field",
			domain.ConditionNode{
				Kind:           domain.NodeLeaf,
				Field:          domain.FieldCustom,
				CustomFieldKey: "error_rate",
				Operator:       domain.OperatorNotContains,
				Value:          "foo",
			},
			false,
		},
		{
			"contains numeric field",
			domain.ConditionNode{
				Kind:           domain.NodeLeaf,
				Field:          domain.FieldCustom,
				CustomFieldKey: "error_rate",
				Operator:       domain.OperatorContains,
				Value:          "42",
			},
			false,
		},
		{"in list", leaf(domain.FieldChannel, domain.OperatorIn, []any{"EMAIL", "CHAT"}), true},
		{"in list miss", leaf(domain.FieldChannel, domain.OperatorIn, []any{"PHONE"}), false},
		{"greater than priority rank", leaf(domain.FieldPriority, domain.OperatorGreaterThan, "MEDIUM"), true},
		{"less than priority rank", leaf(domain.FieldPriority, domain.OperatorLessThan, "URGENT"), true},
		{"is set team", leaf(domain.FieldTeamID, domain.OperatorIsSet, nil), true},
		{"is empty assignee", leaf(domain.FieldAssigneeID, domain.OperatorIsEmpty, nil), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := eval.Evaluate(snapshot, tc.node); got != tc.want {
				t.Fatalf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateCustomFields(t *testing.T) {
	eval := NewEvaluator(zap.NewNop())
	snapshot := testSnapshot()

	node := domain.ConditionNode{
		Kind:           domain.NodeLeaf,
		Field:          domain.FieldCustom,
		CustomFieldKey: "region",
		Operator:       domain.OperatorEquals,
		Value:          "eu-west",
	}
	if !eval.Evaluate(snapshot, node) {
		t.Fatalf("custom field equals should match")
	}

	numeric := domain.ConditionNode{
		Kind:           domain.NodeLeaf,
		Field:          domain.FieldCustom,
		CustomFieldKey: "error_rate",
		Operator:       domain.OperatorGreaterThan,
		Value:          40,
	}
	if !eval.Evaluate(snapshot, numeric) {
		t.Fatalf("numeric custom field comparison should match")
	}

	missing := domain.ConditionNode{
		Kind:           domain.NodeLeaf,
		Field:          domain.FieldCustom,
		CustomFieldKey: "absent",
		Operator:       domain.OperatorIsSet,
	}
	if eval.Evaluate(snapshot, missing) {
		t.Fatalf("missing custom field should be unset")
	}
}

func TestEvaluateUnknownFieldOrOperatorIsFalse(t *testing.T) {
	eval := NewEvaluator(zap.NewNop())
	snapshot := testSnapshot()

	if eval.Evaluate(snapshot, leaf("mystery", domain.OperatorEquals, "x")) {
		t.Fatalf("unknown field should evaluate to false")
	}
	if eval.Evaluate(snapshot, leaf(domain.FieldSubject, "resembles", "x")) {
		t.Fatalf("unknown operator should evaluate to false")
	}

	// A malformed leaf inside And only fails that branch's subtree.
	tree := domain.ConditionNode{
		Kind: domain.NodeOr,
		Children: []domain.ConditionNode{
			leaf("mystery", domain.OperatorEquals, "x"),
			leaf(domain.FieldStatus, domain.OperatorEquals, "OPEN"),
		},
	}
	if !eval.Evaluate(snapshot, tree) {
		t.Fatalf("valid sibling should still match inside Or")
	}
}

func TestEvaluateNestedTree(t *testing.T) {
	eval := NewEvaluator(zap.NewNop())
	snapshot := testSnapshot()

	tree := domain.ConditionNode{
		Kind: domain.NodeAnd,
		Children: []domain.ConditionNode{
			leaf(domain.FieldPriority, domain.OperatorIn, []any{"HIGH", "URGENT"}),
			{
				Kind: domain.NodeOr,
				Children: []domain.ConditionNode{
					leaf(domain.FieldTags, domain.OperatorContains, "outage"),
					leaf(domain.FieldChannel, domain.OperatorEquals, "PHONE"),
				},
			},
		},
	}
	if !eval.Evaluate(snapshot, tree) {
		t.Fatalf("nested tree should match")
	}

	tree.Children[0] = leaf(domain.FieldPriority, domain.OperatorEquals, "LOW")
	if eval.Evaluate(snapshot, tree) {
		t.Fatalf("failing And child should fail the tree")
	}
}
