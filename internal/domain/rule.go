package domain

import "time"

// TriggerType names the ticket lifecycle event that makes a rule eligible.
type TriggerType string

const (
	TriggerTicketCreated  TriggerType = "TICKET_CREATED"
	TriggerStatusChanged  TriggerType = "STATUS_CHANGED"
	TriggerSlaApproaching TriggerType = "SLA_APPROACHING"
	TriggerSlaBreached    TriggerType = "SLA_BREACHED"
)

// KnownTrigger reports whether t is one of the supported trigger types.
func KnownTrigger(t TriggerType) bool {
	switch t {
	case TriggerTicketCreated, TriggerStatusChanged, TriggerSlaApproaching, TriggerSlaBreached:
		return true
	}
	return false
}

// ConditionField is the closed vocabulary of ticket attributes a condition
// leaf may reference. Custom field references use FieldCustom together with
// ConditionNode.CustomFieldKey.
type ConditionField string

const (
	FieldSubject     ConditionField = "subject"
	FieldDescription ConditionField = "description"
	FieldPriority    ConditionField = "priority"
	FieldStatus      ConditionField = "status"
	FieldCategoryID  ConditionField = "category_id"
	FieldTeamID      ConditionField = "team_id"
	FieldAssigneeID  ConditionField = "assignee_id"
	FieldRequesterID ConditionField = "requester_id"
	FieldChannel     ConditionField = "channel"
	FieldTags        ConditionField = "tags"
	FieldCustom      ConditionField = "custom_field"
)

// KnownField reports whether f is part of the condition vocabulary.
func KnownField(f ConditionField) bool {
	switch f {
	case FieldSubject, FieldDescription, FieldPriority, FieldStatus, FieldCategoryID,
		FieldTeamID, FieldAssigneeID, FieldRequesterID, FieldChannel, FieldTags, FieldCustom:
		return true
	}
	return false
}

// ConditionOperator enumerates leaf comparison operators.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorNotContains ConditionOperator = "not_contains"
	OperatorIn          ConditionOperator = "in"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorIsSet       ConditionOperator = "is_set"
	OperatorIsEmpty     ConditionOperator = "is_empty"
)

// KnownOperator reports whether op is a supported operator.
func KnownOperator(op ConditionOperator) bool {
	switch op {
	case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorNotContains,
		OperatorIn, OperatorGreaterThan, OperatorLessThan, OperatorIsSet, OperatorIsEmpty:
		return true
	}
	return false
}

// ConditionNodeKind tags the condition tree union.
type ConditionNodeKind string

const (
	NodeLeaf ConditionNodeKind = "leaf"
	NodeAnd  ConditionNodeKind = "and"
	NodeOr   ConditionNodeKind = "or"
)

// ConditionNode is one node of a rule's boolean condition tree. Leaf nodes
// carry Field/Operator/Value; And/Or nodes carry Children. The tree is
// constructed at rule-save time and never mutated, so it is acyclic by
// construction. An empty And evaluates to true, an empty Or to false.
type ConditionNode struct {
	Kind           ConditionNodeKind `json:"kind"`
	Field          ConditionField    `json:"field,omitempty"`
	CustomFieldKey string            `json:"custom_field_key,omitempty"`
	Operator       ConditionOperator `json:"operator,omitempty"`
	Value          any               `json:"value,omitempty"`
	Children       []ConditionNode   `json:"children,omitempty"`
}

// AutomationRule is a declarative automation definition. Rules are created
// and edited by the admin API and read-only to the engine. A rule with
// TeamScope set only matches tickets assigned to that team; nil applies to
// tickets of any team. Lower Priority values run earlier within a dispatch.
type AutomationRule struct {
	ID            string
	Name          string
	Trigger       TriggerType
	ConditionTree ConditionNode
	Actions       []AutomationAction
	Priority      int
	IsActive      bool
	TeamScope     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
