package sla

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// ThresholdCrossing describes one signal the clock decided to fire. The
// caller routes it to the notification collaborator and the
// SLA_APPROACHING / SLA_BREACHED automation triggers.
type ThresholdCrossing struct {
	TicketID string
	Kind     domain.ThresholdKind
	SubClock domain.SubClock
	DueAt    time.Time
}

// Clock holds the pure SLA state-machine logic. It mutates SlaInstance
// values in memory; persistence is the caller's concern. All methods are
// deterministic given the supplied `now`.
type Clock struct {
	atRiskFraction float64
	logger         *zap.Logger
}

// NewClock constructs a clock. atRiskFraction is the elapsed fraction at
// which the at-risk signal fires, e.g. 0.8.
func NewClock(atRiskFraction float64, logger *zap.Logger) *Clock {
	return &Clock{atRiskFraction: atRiskFraction, logger: logger}
}

// NewInstance derives the initial SLA state for a ticket created at
// createdAt under the given policy. With BusinessHoursOnly the due dates
// walk the calendar; otherwise they are plain wall-clock addition.
func NewInstance(policy *domain.SlaPolicy, cal *Calendar, ticketID string, createdAt time.Time) *domain.SlaInstance {
	return &domain.SlaInstance{
		TicketID:           ticketID,
		FirstResponseDueAt: due(policy, cal, createdAt, policy.FirstResponseHours),
		ResolutionDueAt:    due(policy, cal, createdAt, policy.ResolutionHours),
		CreatedAt:          createdAt,
	}
}

func due(policy *domain.SlaPolicy, cal *Calendar, from time.Time, hours float64) time.Time {
	if policy.BusinessHoursOnly && cal != nil {
		return cal.Advance(from, hours)
	}
	return from.Add(time.Duration(hours * float64(time.Hour)))
}

// OnStatusChanged applies a ticket status transition to the instance.
// Entering a waiting status pauses the resolution clock; leaving it adds
// the pause interval to the cumulative total and shifts the not-yet-met
// resolution due date forward by the same delta. The first-response clock
// is structurally untouched by pause bookkeeping: its target is met or
// missed on the first public reply regardless of wait state. Reaching a
// terminal status records completion once.
func (c *Clock) OnStatusChanged(inst *domain.SlaInstance, oldStatus, newStatus domain.TicketStatus, now time.Time) {
	if oldStatus.IsWaiting() && !newStatus.IsWaiting() {
		c.resume(inst, now)
	}

	switch {
	case newStatus.IsWaiting():
		if !inst.Paused() && !inst.ResolutionMet() {
			paused := now
			inst.SlaPausedAt = &paused
		}
	case newStatus.IsTerminal():
		if !inst.ResolutionMet() {
			completed := now
			inst.CompletedAt = &completed
		}
	}
}

func (c *Clock) resume(inst *domain.SlaInstance, now time.Time) {
	if !inst.Paused() {
		return
	}
	delta := now.Sub(*inst.SlaPausedAt)
	if delta < 0 {
		delta = 0
	}
	inst.PausedDurationMs += delta.Milliseconds()
	inst.SlaPausedAt = nil
	if !inst.ResolutionMet() {
		inst.ResolutionDueAt = inst.ResolutionDueAt.Add(delta)
	}
	c.logger.Debug("sla clock resumed",
		zap.String("ticket_id", inst.TicketID),
		zap.Duration("paused_for", delta))
}

// RecordFirstResponse marks the first-response sub-clock met. Set once:
// later calls are no-ops, so an already-recorded response time is never
// moved or shifted.
func (c *Clock) RecordFirstResponse(inst *domain.SlaInstance, now time.Time) {
	if inst.FirstResponseAt != nil {
		return
	}
	responded := now
	inst.FirstResponseAt = &responded
}

// CheckThresholds inspects both sub-clocks at `now` and returns the
// signals to fire, setting the corresponding notified markers so each
// (ticket, kind, sub-clock) tuple fires at most once for the instance's
// lifetime. Safe to call repeatedly; subsequent calls after a crossing are
// no-ops. A paused resolution clock is not Running and produces nothing.
func (c *Clock) CheckThresholds(inst *domain.SlaInstance, now time.Time) []ThresholdCrossing {
	var crossings []ThresholdCrossing

	if !inst.FirstResponseMet() {
		crossings = append(crossings, c.checkSubClock(inst, now,
			domain.SubClockFirstResponse,
			inst.FirstResponseDueAt,
			&inst.FirstResponseAtRiskNotifiedAt,
			&inst.FirstResponseBreachNotifiedAt)...)
	}

	if !inst.ResolutionMet() && !inst.Paused() {
		crossings = append(crossings, c.checkSubClock(inst, now,
			domain.SubClockResolution,
			inst.ResolutionDueAt,
			&inst.ResolutionAtRiskNotifiedAt,
			&inst.ResolutionBreachNotifiedAt)...)
	}

	return crossings
}

func (c *Clock) checkSubClock(inst *domain.SlaInstance, now time.Time, sub domain.SubClock, dueAt time.Time, atRiskMark, breachMark **time.Time) []ThresholdCrossing {
	var crossings []ThresholdCrossing

	if now.After(dueAt) {
		if *breachMark == nil {
			mark := now
			*breachMark = &mark
			crossings = append(crossings, ThresholdCrossing{
				TicketID: inst.TicketID,
				Kind:     domain.ThresholdBreached,
				SubClock: sub,
				DueAt:    dueAt,
			})
		}
		return crossings
	}

	total := dueAt.Sub(inst.CreatedAt)
	if total <= 0 {
		return crossings
	}
	fraction := float64(now.Sub(inst.CreatedAt)) / float64(total)
	if fraction >= c.atRiskFraction && *atRiskMark == nil {
		mark := now
		*atRiskMark = &mark
		crossings = append(crossings, ThresholdCrossing{
			TicketID: inst.TicketID,
			Kind:     domain.ThresholdAtRisk,
			SubClock: sub,
			DueAt:    dueAt,
		})
	}
	return crossings
}
