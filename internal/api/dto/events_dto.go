package dto

import "github.com/spec-kit/helpdesk-automation/internal/domain"

// TicketCreatedRequest signals a newly created ticket.
type TicketCreatedRequest struct {
	TicketID string `json:"ticket_id"`
}

// StatusChangedRequest signals a ticket status transition.
type StatusChangedRequest struct {
	TicketID  string              `json:"ticket_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// FirstResponseRequest signals the first agent reply on a ticket.
type FirstResponseRequest struct {
	TicketID string `json:"ticket_id"`
}

// FailedTaskResponse one exhausted dispatch task.
type FailedTaskResponse struct {
	ID        string             `json:"id"`
	TicketID  string             `json:"ticket_id"`
	Trigger   domain.TriggerType `json:"trigger"`
	Attempts  int                `json:"attempts"`
	LastError string             `json:"last_error,omitempty"`
}
