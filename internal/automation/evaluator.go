package automation

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// Evaluator decides whether a condition tree matches a ticket snapshot.
// Evaluation is pure: no I/O beyond warning logs for malformed nodes, and
// a malformed leaf evaluates to false rather than aborting the tree.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator constructs an evaluator.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate walks the tree left-to-right with short-circuit And/Or. An
// empty And is vacuously true, an empty Or vacuously false.
func (e *Evaluator) Evaluate(snapshot *domain.TicketSnapshot, node domain.ConditionNode) bool {
	switch node.Kind {
	case domain.NodeAnd:
		for _, child := range node.Children {
			if !e.Evaluate(snapshot, child) {
				return false
			}
		}
		return true
	case domain.NodeOr:
		for _, child := range node.Children {
			if e.Evaluate(snapshot, child) {
				return true
			}
		}
		return false
	case domain.NodeLeaf:
		return e.evaluateLeaf(snapshot, node)
	default:
		e.logger.Warn("unknown condition node kind", zap.String("kind", string(node.Kind)))
		return false
	}
}

func (e *Evaluator) evaluateLeaf(snapshot *domain.TicketSnapshot, leaf domain.ConditionNode) bool {
	if !domain.KnownField(leaf.Field) {
		e.logger.Warn("unknown condition field", zap.String("field", string(leaf.Field)))
		return false
	}
	value := resolveField(snapshot, leaf.Field, leaf.CustomFieldKey)

	switch leaf.Operator {
	case domain.OperatorIsSet:
		return isSet(value)
	case domain.OperatorIsEmpty:
		return !isSet(value)
	case domain.OperatorEquals:
		return valuesEqual(value, leaf.Value)
	case domain.OperatorNotEquals:
		return !valuesEqual(value, leaf.Value)
	case domain.OperatorContains:
		return containsValue(value, leaf.Value)
	case domain.OperatorNotContains:
		return containsApplicable(value) && !containsValue(value, leaf.Value)
	case domain.OperatorIn:
		return inList(value, leaf.Value)
	case domain.OperatorGreaterThan:
		cmp, ok := compareOrdered(leaf.Field, value, leaf.Value)
		return ok && cmp > 0
	case domain.OperatorLessThan:
		cmp, ok := compareOrdered(leaf.Field, value, leaf.Value)
		return ok && cmp < 0
	default:
		e.logger.Warn("unknown condition operator", zap.String("operator", string(leaf.Operator)))
		return false
	}
}

// resolveField projects the snapshot attribute a leaf refers to. A custom
// field with no stored value resolves to nil, which is a legitimate "unset"
// rather than a vocabulary error.
func resolveField(snapshot *domain.TicketSnapshot, field domain.ConditionField, customKey string) any {
	switch field {
	case domain.FieldSubject:
		return snapshot.Subject
	case domain.FieldDescription:
		return snapshot.Description
	case domain.FieldPriority:
		return string(snapshot.Priority)
	case domain.FieldStatus:
		return string(snapshot.Status)
	case domain.FieldCategoryID:
		return derefString(snapshot.CategoryID)
	case domain.FieldTeamID:
		return derefString(snapshot.TeamID)
	case domain.FieldAssigneeID:
		return derefString(snapshot.AssigneeID)
	case domain.FieldRequesterID:
		return snapshot.RequesterID
	case domain.FieldChannel:
		return string(snapshot.Channel)
	case domain.FieldTags:
		return snapshot.Tags
	case domain.FieldCustom:
		return snapshot.CustomFieldValues[customKey]
	}
	return nil
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func isSet(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	}
	return true
}

// valuesEqual coerces both sides to the field's effective type before
// comparing: numeric when both sides parse as numbers, string otherwise.
func valuesEqual(fieldValue, condValue any) bool {
	if fieldValue == nil || condValue == nil {
		return fieldValue == nil && condValue == nil
	}
	if fn, fok := toFloat(fieldValue); fok {
		if cn, cok := toFloat(condValue); cok {
			return fn == cn
		}
	}
	return stringify(fieldValue) == stringify(condValue)
}

// containsApplicable reports whether a field value has a type the
// contains operators are defined over. Both contains and notContains
// evaluate to false against any other type, non-fatally.
func containsApplicable(value any) bool {
	switch value.(type) {
	case string, []string, []any:
		return true
	}
	return false
}

// containsValue applies to string and list-valued fields only; evaluating
// it against any other field type yields false, non-fatally.
func containsValue(fieldValue, condValue any) bool {
	needle := stringify(condValue)
	switch v := fieldValue.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), strings.ToLower(needle))
	case []string:
		for _, item := range v {
			if strings.EqualFold(item, needle) {
				return true
			}
		}
		return false
	case []any:
		for _, item := range v {
			if strings.EqualFold(stringify(item), needle) {
				return true
			}
		}
		return false
	}
	return false
}

func inList(fieldValue, condValue any) bool {
	if fieldValue == nil {
		return false
	}
	var candidates []any
	switch v := condValue.(type) {
	case []any:
		candidates = v
	case []string:
		for _, item := range v {
			candidates = append(candidates, item)
		}
	default:
		return false
	}
	for _, candidate := range candidates {
		if valuesEqual(fieldValue, candidate) {
			return true
		}
	}
	return false
}

// compareOrdered orders two values numerically where possible. Priority
// values order by urgency rank, not lexically.
func compareOrdered(field domain.ConditionField, fieldValue, condValue any) (int, bool) {
	if field == domain.FieldPriority {
		fr, fok := priorityRank(stringify(fieldValue))
		cr, cok := priorityRank(stringify(condValue))
		if fok && cok {
			return fr - cr, true
		}
		return 0, false
	}
	fn, fok := toFloat(fieldValue)
	cn, cok := toFloat(condValue)
	if !fok || !cok {
		return 0, false
	}
	switch {
	case fn > cn:
		return 1, true
	case fn < cn:
		return -1, true
	}
	return 0, true
}

func priorityRank(priority string) (int, bool) {
	switch domain.TicketPriority(priority) {
	case domain.TicketPriorityLow:
		return 1, true
	case domain.TicketPriorityMedium:
		return 2, true
	case domain.TicketPriorityHigh:
		return 3, true
	case domain.TicketPriorityUrgent:
		return 4, true
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}
