package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// SavePolicyRequest payload for SLA policy upsert. TeamID nil stores a
// platform-default policy for the priority.
type SavePolicyRequest struct {
	TeamID             *string               `json:"team_id"`
	Priority           domain.TicketPriority `json:"priority"`
	FirstResponseHours float64               `json:"first_response_hours"`
	ResolutionHours    float64               `json:"resolution_hours"`
	BusinessHoursOnly  bool                  `json:"business_hours_only"`
}

// PolicyResponse full policy representation.
type PolicyResponse struct {
	ID                 string                `json:"id"`
	TeamID             *string               `json:"team_id"`
	Priority           domain.TicketPriority `json:"priority"`
	FirstResponseHours float64               `json:"first_response_hours"`
	ResolutionHours    float64               `json:"resolution_hours"`
	BusinessHoursOnly  bool                  `json:"business_hours_only"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// SaveScheduleRequest payload for the business-hours calendar. Days is
// indexed Monday through Sunday; Holidays are "YYYY-MM-DD" dates.
type SaveScheduleRequest struct {
	Timezone string                `json:"timezone"`
	Days     [7]domain.DaySchedule `json:"days"`
	Holidays []string              `json:"holidays"`
}

// SlaInstanceResponse per-ticket SLA state.
type SlaInstanceResponse struct {
	TicketID           string     `json:"ticket_id"`
	FirstResponseDueAt time.Time  `json:"first_response_due_at"`
	FirstResponseAt    *time.Time `json:"first_response_at"`
	ResolutionDueAt    time.Time  `json:"resolution_due_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	Paused             bool       `json:"paused"`
	PausedAt           *time.Time `json:"paused_at"`
	PausedDurationMs   int64      `json:"paused_duration_ms"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
