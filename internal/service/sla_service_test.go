package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/observability"
	"github.com/spec-kit/helpdesk-automation/internal/sla"
)

type fakeInstanceRepo struct {
	mu        sync.Mutex
	instances map[string]domain.SlaInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{instances: make(map[string]domain.SlaInstance)}
}

func (r *fakeInstanceRepo) Create(ctx context.Context, instance *domain.SlaInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[instance.TicketID] = *instance
	return nil
}

func (r *fakeInstanceRepo) Update(ctx context.Context, instance *domain.SlaInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[instance.TicketID]; !ok {
		return pgx.ErrNoRows
	}
	r.instances[instance.TicketID] = *instance
	return nil
}

func (r *fakeInstanceRepo) GetByTicket(ctx context.Context, ticketID string) (*domain.SlaInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	instance, ok := r.instances[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &instance, nil
}

func (r *fakeInstanceRepo) ListOpen(ctx context.Context, limit int) ([]domain.SlaInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.SlaInstance
	for _, instance := range r.instances {
		if instance.FirstResponseAt == nil || instance.CompletedAt == nil {
			result = append(result, instance)
		}
	}
	return result, nil
}

type fakePolicyRepo struct {
	policy *domain.SlaPolicy
}

func (r *fakePolicyRepo) Upsert(ctx context.Context, policy *domain.SlaPolicy) error {
	r.policy = policy
	return nil
}

func (r *fakePolicyRepo) GetForTicket(ctx context.Context, teamID *string, priority domain.TicketPriority) (*domain.SlaPolicy, error) {
	if r.policy == nil {
		return nil, pgx.ErrNoRows
	}
	return r.policy, nil
}

func (r *fakePolicyRepo) List(ctx context.Context) ([]domain.SlaPolicy, error) {
	if r.policy == nil {
		return nil, nil
	}
	return []domain.SlaPolicy{*r.policy}, nil
}

type fakeScheduleRepo struct {
	schedule domain.BusinessHoursSchedule
}

func (r *fakeScheduleRepo) Get(ctx context.Context) (*domain.BusinessHoursSchedule, error) {
	schedule := r.schedule
	return &schedule, nil
}

func (r *fakeScheduleRepo) Save(ctx context.Context, schedule *domain.BusinessHoursSchedule) error {
	r.schedule = *schedule
	return nil
}

type fakeSnapshotSource struct {
	snapshot domain.TicketSnapshot
}

func (r *fakeSnapshotSource) GetSnapshot(ctx context.Context, ticketID string) (*domain.TicketSnapshot, error) {
	if ticketID != r.snapshot.ID {
		return nil, pgx.ErrNoRows
	}
	snapshot := r.snapshot
	return &snapshot, nil
}

func (r *fakeSnapshotSource) ApplyMutation(ctx context.Context, intent *domain.MutationIntent) error {
	return nil
}

type fakeSubmitter struct {
	mu          sync.Mutex
	submissions []string
}

func (d *fakeSubmitter) Submit(ctx context.Context, ticketID string, trigger domain.TriggerType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submissions = append(d.submissions, ticketID+"/"+string(trigger))
	return nil
}

func (d *fakeSubmitter) all() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.submissions...)
}

func alwaysOpenSchedule() domain.BusinessHoursSchedule {
	var schedule domain.BusinessHoursSchedule
	schedule.Timezone = "UTC"
	for i := range schedule.Days {
		schedule.Days[i] = domain.DaySchedule{Enabled: true, Start: "00:00", End: "23:59"}
	}
	return schedule
}

func newTestSlaService(t *testing.T, created time.Time) (*SlaService, *fakeInstanceRepo, *fakeSubmitter) {
	t.Helper()
	instances := newFakeInstanceRepo()
	submitter := &fakeSubmitter{}
	svc := NewSlaService(SlaDependencies{
		InstanceRepo: instances,
		PolicyRepo: &fakePolicyRepo{policy: &domain.SlaPolicy{
			Priority:           domain.TicketPriorityHigh,
			FirstResponseHours: 4,
			ResolutionHours:    24,
		}},
		ScheduleRepo: &fakeScheduleRepo{schedule: alwaysOpenSchedule()},
		TicketRepo: &fakeSnapshotSource{snapshot: domain.TicketSnapshot{
			ID:          "t-1",
			Priority:    domain.TicketPriorityHigh,
			Status:      domain.TicketStatusOpen,
			RequesterID: "user-1",
			CreatedAt:   created,
		}},
		Clock:      sla.NewClock(0.8, zap.NewNop()),
		Dispatcher: submitter,
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
	return svc, instances, submitter
}

func TestHandleTicketCreatedMaterializesInstance(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc, instances, _ := newTestSlaService(t, created)

	if err := svc.HandleTicketCreated(context.Background(), "t-1"); err != nil {
		t.Fatalf("HandleTicketCreated() returned %v", err)
	}

	instance, err := instances.GetByTicket(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("instance not stored: %v", err)
	}
	if !instance.FirstResponseDueAt.Equal(created.Add(4 * time.Hour)) {
		t.Fatalf("first response due %v, want created+4h", instance.FirstResponseDueAt)
	}
	if !instance.ResolutionDueAt.Equal(created.Add(24 * time.Hour)) {
		t.Fatalf("resolution due %v, want created+24h", instance.ResolutionDueAt)
	}
}

func TestRunSweepFiresEachCrossingOnce(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc, _, submitter := newTestSlaService(t, created)

	if err := svc.HandleTicketCreated(context.Background(), "t-1"); err != nil {
		t.Fatalf("HandleTicketCreated() returned %v", err)
	}

	// Past the first-response due date but inside the resolution window.
	svc.now = func() time.Time { return created.Add(5 * time.Hour) }
	if err := svc.RunSweep(context.Background()); err != nil {
		t.Fatalf("first sweep returned %v", err)
	}
	if got := submitter.all(); len(got) != 1 || got[0] != "t-1/SLA_BREACHED" {
		t.Fatalf("first sweep should submit one breach trigger, got %v", got)
	}

	// Marker persisted: repeating the sweep at a later instant is a no-op
	// for the same sub-clock.
	svc.now = func() time.Time { return created.Add(6 * time.Hour) }
	if err := svc.RunSweep(context.Background()); err != nil {
		t.Fatalf("second sweep returned %v", err)
	}
	if got := submitter.all(); len(got) != 1 {
		t.Fatalf("second sweep should add nothing, got %v", got)
	}
}

func TestStatusChangeLifecycle(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc, instances, _ := newTestSlaService(t, created)

	if err := svc.HandleTicketCreated(context.Background(), "t-1"); err != nil {
		t.Fatalf("HandleTicketCreated() returned %v", err)
	}

	svc.now = func() time.Time { return created.Add(time.Hour) }
	if err := svc.HandleStatusChanged(context.Background(), "t-1", domain.TicketStatusOpen, domain.TicketStatusWaitingOnRequester); err != nil {
		t.Fatalf("pause transition returned %v", err)
	}

	svc.now = func() time.Time { return created.Add(3 * time.Hour) }
	if err := svc.HandleStatusChanged(context.Background(), "t-1", domain.TicketStatusWaitingOnRequester, domain.TicketStatusInProgress); err != nil {
		t.Fatalf("resume transition returned %v", err)
	}

	instance, _ := instances.GetByTicket(context.Background(), "t-1")
	if instance.PausedDurationMs != (2 * time.Hour).Milliseconds() {
		t.Fatalf("paused duration %dms, want 2h", instance.PausedDurationMs)
	}
	if !instance.ResolutionDueAt.Equal(created.Add(26 * time.Hour)) {
		t.Fatalf("resolution due should shift by the pause, got %v", instance.ResolutionDueAt)
	}

	svc.now = func() time.Time { return created.Add(4 * time.Hour) }
	if err := svc.HandleFirstResponse(context.Background(), "t-1"); err != nil {
		t.Fatalf("HandleFirstResponse() returned %v", err)
	}
	instance, _ = instances.GetByTicket(context.Background(), "t-1")
	if instance.FirstResponseAt == nil {
		t.Fatalf("first response should be recorded")
	}
}

func TestHandleStatusChangedUnknownTicket(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestSlaService(t, created)

	err := svc.HandleStatusChanged(context.Background(), "missing", domain.TicketStatusOpen, domain.TicketStatusResolved)
	if err == nil {
		t.Fatalf("missing instance should report not found")
	}
}
