package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/dispatch"
	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/events"
	"github.com/spec-kit/helpdesk-automation/internal/observability"
	"github.com/spec-kit/helpdesk-automation/internal/repository"
	"github.com/spec-kit/helpdesk-automation/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-automation/pkg/util"
)

// SlaService maintains per-ticket SLA state across the ticket lifecycle
// and runs the periodic threshold sweep. It compiles the business-hours
// schedule at each computation, so edits take effect for new computations
// without touching already-materialized due dates.
type SlaService struct {
	instances  repository.SlaInstanceRepository
	policies   repository.SlaPolicyRepository
	schedules  repository.ScheduleRepository
	tickets    repository.TicketRepository
	clock      *sla.Clock
	dispatcher dispatch.Dispatcher
	events     events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	sweepLimit int
	now        func() time.Time
}

// SlaDependencies bundles collaborators for the SLA service.
type SlaDependencies struct {
	InstanceRepo repository.SlaInstanceRepository
	PolicyRepo   repository.SlaPolicyRepository
	ScheduleRepo repository.ScheduleRepository
	TicketRepo   repository.TicketRepository
	Clock        *sla.Clock
	Dispatcher   dispatch.Dispatcher
	Events       events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewSlaService constructs the service.
func NewSlaService(deps SlaDependencies) *SlaService {
	return &SlaService{
		instances:  deps.InstanceRepo,
		policies:   deps.PolicyRepo,
		schedules:  deps.ScheduleRepo,
		tickets:    deps.TicketRepo,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		events:     deps.Events,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		sweepLimit: 500,
		now:        time.Now,
	}
}

// HandleTicketCreated derives the initial SLA instance for a new ticket
// from the applicable policy and the schedule in effect now.
func (s *SlaService) HandleTicketCreated(ctx context.Context, ticketID string) error {
	snapshot, err := s.tickets.GetSnapshot(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	policy, err := s.policies.GetForTicket(ctx, snapshot.TeamID, snapshot.Priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("sla policy", map[string]any{"priority": snapshot.Priority})
		}
		return apperrors.MapError(err)
	}
	cal, err := s.loadCalendar(ctx)
	if err != nil {
		return err
	}

	instance := sla.NewInstance(policy, cal, snapshot.ID, snapshot.CreatedAt)
	if err := s.instances.Create(ctx, instance); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("sla instance created",
		zap.String("ticket_id", snapshot.ID),
		zap.Time("first_response_due_at", instance.FirstResponseDueAt),
		zap.Time("resolution_due_at", instance.ResolutionDueAt))
	return nil
}

// HandleStatusChanged applies a status transition: pause on entering a
// waiting state, resume (and shift the unmet resolution due date) on
// leaving it, completion on reaching a terminal state.
func (s *SlaService) HandleStatusChanged(ctx context.Context, ticketID string, oldStatus, newStatus domain.TicketStatus) error {
	instance, err := s.instances.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("sla instance", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	s.clock.OnStatusChanged(instance, oldStatus, newStatus, s.now())
	if err := s.instances.Update(ctx, instance); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// HandleFirstResponse marks the first-response sub-clock met. Idempotent:
// only the first call records a timestamp.
func (s *SlaService) HandleFirstResponse(ctx context.Context, ticketID string) error {
	instance, err := s.instances.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("sla instance", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	s.clock.RecordFirstResponse(instance, s.now())
	if err := s.instances.Update(ctx, instance); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetInstance returns the SLA state for one ticket.
func (s *SlaService) GetInstance(ctx context.Context, ticketID string) (*domain.SlaInstance, error) {
	instance, err := s.instances.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return instance, nil
}

// RunSweep checks every open instance for threshold crossings. Crossings
// are persisted before any signal fires, so a repeated sweep never fires
// the same (ticket, kind, sub-clock) twice. A failure on one ticket is
// logged and does not block the rest of the sweep.
func (s *SlaService) RunSweep(ctx context.Context) error {
	open, err := s.instances.ListOpen(ctx, s.sweepLimit)
	if err != nil {
		return fmt.Errorf("list open sla instances: %w", err)
	}

	now := s.now()
	var failures int
	for i := range open {
		instance := &open[i]
		crossings := s.clock.CheckThresholds(instance, now)
		if len(crossings) == 0 {
			continue
		}
		if err := s.instances.Update(ctx, instance); err != nil {
			failures++
			s.logger.Error("sla instance update failed during sweep",
				zap.String("ticket_id", instance.TicketID),
				zap.Error(err))
			continue
		}
		for _, crossing := range crossings {
			s.signal(ctx, crossing)
		}
	}

	if failures > 0 {
		return fmt.Errorf("sla sweep: %d of %d instances failed", failures, len(open))
	}
	return nil
}

// signal routes one persisted crossing to the notification collaborator
// and the matching automation trigger.
func (s *SlaService) signal(ctx context.Context, crossing sla.ThresholdCrossing) {
	s.metrics.RecordSlaSignal(string(crossing.Kind), string(crossing.SubClock))
	s.logger.Info("sla threshold crossed",
		zap.String("ticket_id", crossing.TicketID),
		zap.String("kind", string(crossing.Kind)),
		zap.String("sub_clock", string(crossing.SubClock)),
		zap.Time("due_at", crossing.DueAt))

	if s.events != nil {
		_ = s.events.Publish(ctx, events.Event{
			Type:     events.EventSlaThresholdCrossed,
			TicketID: crossing.TicketID,
			Payload: events.SlaThresholdCrossedPayload{
				Kind:     crossing.Kind,
				SubClock: crossing.SubClock,
				DueAt:    crossing.DueAt,
			},
		})
	}

	trigger := domain.TriggerSlaApproaching
	if crossing.Kind == domain.ThresholdBreached {
		trigger = domain.TriggerSlaBreached
	}
	if err := s.dispatcher.Submit(ctx, crossing.TicketID, trigger); err != nil {
		s.logger.Error("sla trigger submission failed",
			zap.String("ticket_id", crossing.TicketID),
			zap.String("trigger", string(trigger)),
			zap.Error(err))
	}
}

func (s *SlaService) loadCalendar(ctx context.Context) (*sla.Calendar, error) {
	schedule, err := s.schedules.Get(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	cal, err := sla.NewCalendar(schedule)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("compile business hours schedule: %w", err))
	}
	return cal, nil
}

// SavePolicy validates and stores one SLA policy.
func (s *SlaService) SavePolicy(ctx context.Context, policy *domain.SlaPolicy) error {
	if policy.FirstResponseHours <= 0 || policy.ResolutionHours <= 0 {
		return apperrors.NewValidationError("sla hours must be positive", nil)
	}
	return s.policies.Upsert(ctx, policy)
}

// ListPolicies returns all policies, defaults first.
func (s *SlaService) ListPolicies(ctx context.Context) ([]domain.SlaPolicy, error) {
	return s.policies.List(ctx)
}

// GetSchedule returns the business-hours schedule in effect.
func (s *SlaService) GetSchedule(ctx context.Context) (*domain.BusinessHoursSchedule, error) {
	schedule, err := s.schedules.Get(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return schedule, nil
}

// SaveSchedule validates and replaces the schedule. Compiling it first
// rejects malformed windows and unknown timezones before they are stored.
func (s *SlaService) SaveSchedule(ctx context.Context, schedule *domain.BusinessHoursSchedule) error {
	if _, err := sla.NewCalendar(schedule); err != nil {
		return apperrors.NewValidationError("invalid schedule", map[string]any{"cause": err.Error()})
	}
	return s.schedules.Save(ctx, schedule)
}
