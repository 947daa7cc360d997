package dispatch

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// Task is one submitted unit of automation work: run every matching rule
// for a (ticket, trigger) pair. Attempts counts executions so far.
type Task struct {
	ID         string             `json:"id"`
	TicketID   string             `json:"ticket_id"`
	Trigger    domain.TriggerType `json:"trigger"`
	Attempts   int                `json:"attempts"`
	EnqueuedAt time.Time          `json:"enqueued_at"`
	LastError  string             `json:"last_error,omitempty"`
}

// Runner executes one dispatched unit of work. The automation engine
// implements it; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, ticketID string, trigger domain.TriggerType) error
}

// Dispatcher accepts automation submissions. Callers treat Submit as
// fire-and-forget; internally it may run synchronously on the inline
// fallback path.
type Dispatcher interface {
	Submit(ctx context.Context, ticketID string, trigger domain.TriggerType) error
}
