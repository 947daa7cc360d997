package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen               TicketStatus = "OPEN"
	TicketStatusInProgress         TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingOnRequester TicketStatus = "WAITING_ON_REQUESTER"
	TicketStatusWaitingOnVendor    TicketStatus = "WAITING_ON_VENDOR"
	TicketStatusResolved           TicketStatus = "RESOLVED"
	TicketStatusClosed             TicketStatus = "CLOSED"
	TicketStatusCancelled          TicketStatus = "CANCELLED"
)

// IsWaiting reports whether the status pauses the resolution SLA clock.
func (s TicketStatus) IsWaiting() bool {
	return s == TicketStatusWaitingOnRequester || s == TicketStatusWaitingOnVendor
}

// IsTerminal reports whether the ticket has reached a completed state.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed || s == TicketStatusCancelled
}

// KnownStatus reports whether s is one of the supported lifecycle states.
func KnownStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingOnRequester,
		TicketStatusWaitingOnVendor, TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketChannel identifies how a ticket entered the system.
type TicketChannel string

const (
	ChannelEmail TicketChannel = "EMAIL"
	ChannelWeb   TicketChannel = "WEB"
	ChannelChat  TicketChannel = "CHAT"
	ChannelPhone TicketChannel = "PHONE"
	ChannelAPI   TicketChannel = "API"
)

// TicketSnapshot is the point-in-time projection of a ticket that the
// automation engine evaluates conditions against and builds mutation
// intents from. It is read in a single query so the view is internally
// consistent; Version backs the store's optimistic concurrency check.
type TicketSnapshot struct {
	ID                string
	Subject           string
	Description       string
	Status            TicketStatus
	Priority          TicketPriority
	Channel           TicketChannel
	TeamID            *string
	AssigneeID        *string
	CategoryID        *string
	RequesterID       string
	Tags              []string
	CustomFieldValues map[string]any
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
