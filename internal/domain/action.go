package domain

// ActionType tags the automation action union. The set is open for
// extension; unknown types degrade to a logged no-op at execution time.
type ActionType string

const (
	ActionAssignTeam  ActionType = "ASSIGN_TEAM"
	ActionAssignUser  ActionType = "ASSIGN_USER"
	ActionSetPriority ActionType = "SET_PRIORITY"
	ActionSetStatus   ActionType = "SET_STATUS"
)

// AutomationAction describes one side effect a rule requests. Actions are
// intents, not effects: building the same intent twice from the same
// snapshot yields the same result, and an action already satisfied by the
// snapshot produces no intent at all.
type AutomationAction struct {
	Type     ActionType     `json:"type"`
	TeamID   string         `json:"team_id,omitempty"`
	UserID   string         `json:"user_id,omitempty"`
	Priority TicketPriority `json:"priority,omitempty"`
	Status   TicketStatus   `json:"status,omitempty"`
}

// MutationField names the ticket column a mutation intent targets.
type MutationField string

const (
	MutationTeam     MutationField = "team_id"
	MutationAssignee MutationField = "assignee_id"
	MutationPriority MutationField = "priority"
	MutationStatus   MutationField = "status"
)

// MutationIntent is the data describing one desired field change. The
// ticket store applies it under its own per-record transaction; the engine
// never writes ticket state directly.
type MutationIntent struct {
	TicketID string
	Field    MutationField
	Value    any
	// ExpectedVersion carries the snapshot version the intent was built
	// from; the store reports a conflict when the row has moved on.
	ExpectedVersion int64
}
