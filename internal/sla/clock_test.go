package sla

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

func testPolicy(businessHours bool) *domain.SlaPolicy {
	return &domain.SlaPolicy{
		Priority:           domain.TicketPriorityHigh,
		FirstResponseHours: 4,
		ResolutionHours:    24,
		BusinessHoursOnly:  businessHours,
	}
}

func TestNewInstanceWallClock(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)

	if !inst.FirstResponseDueAt.Equal(created.Add(4 * time.Hour)) {
		t.Fatalf("first response due %v, want created+4h", inst.FirstResponseDueAt)
	}
	if !inst.ResolutionDueAt.Equal(created.Add(24 * time.Hour)) {
		t.Fatalf("resolution due %v, want created+24h", inst.ResolutionDueAt)
	}
}

func TestNewInstanceBusinessHours(t *testing.T) {
	cal := mustCalendar(t, weekdaySchedule())
	// Friday 16:00: 2h Friday remain, the other 2h land Monday.
	created := time.Date(2026, 3, 6, 16, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(true), cal, "t-1", created)

	want := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	if !inst.FirstResponseDueAt.Equal(want) {
		t.Fatalf("first response due %v, want %v", inst.FirstResponseDueAt, want)
	}
}

func TestPauseResumeShiftsResolutionOnly(t *testing.T) {
	clock := NewClock(0.8, zap.NewNop())
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)
	firstResponseDue := inst.FirstResponseDueAt
	resolutionDue := inst.ResolutionDueAt

	pausedAt := created.Add(1 * time.Hour)
	clock.OnStatusChanged(inst, domain.TicketStatusOpen, domain.TicketStatusWaitingOnRequester, pausedAt)
	if !inst.Paused() {
		t.Fatalf("entering a waiting status should pause the clock")
	}

	resumedAt := pausedAt.Add(2 * time.Hour)
	clock.OnStatusChanged(inst, domain.TicketStatusWaitingOnRequester, domain.TicketStatusInProgress, resumedAt)
	if inst.Paused() {
		t.Fatalf("leaving the waiting status should resume the clock")
	}
	if inst.PausedDurationMs != (2 * time.Hour).Milliseconds() {
		t.Fatalf("paused duration %dms, want 2h", inst.PausedDurationMs)
	}
	if !inst.ResolutionDueAt.Equal(resolutionDue.Add(2 * time.Hour)) {
		t.Fatalf("resolution due should shift by the pause, got %v", inst.ResolutionDueAt)
	}
	if !inst.FirstResponseDueAt.Equal(firstResponseDue) {
		t.Fatalf("first response due must not move on pause/resume")
	}
}

func TestWaitingToWaitingKeepsSinglePause(t *testing.T) {
	clock := NewClock(0.8, zap.NewNop())
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)

	clock.OnStatusChanged(inst, domain.TicketStatusOpen, domain.TicketStatusWaitingOnRequester, created.Add(time.Hour))
	firstPause := *inst.SlaPausedAt

	clock.OnStatusChanged(inst, domain.TicketStatusWaitingOnRequester, domain.TicketStatusWaitingOnVendor, created.Add(2*time.Hour))
	if inst.SlaPausedAt == nil || !inst.SlaPausedAt.Equal(firstPause) {
		t.Fatalf("waiting-to-waiting transition should keep the original pause")
	}
	if inst.PausedDurationMs != 0 {
		t.Fatalf("nothing should be banked while still waiting, got %dms", inst.PausedDurationMs)
	}
}

func TestTerminalStatusCompletesOnce(t *testing.T) {
	clock := NewClock(0.8, zap.NewNop())
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)

	resolvedAt := created.Add(3 * time.Hour)
	clock.OnStatusChanged(inst, domain.TicketStatusInProgress, domain.TicketStatusResolved, resolvedAt)
	if inst.CompletedAt == nil || !inst.CompletedAt.Equal(resolvedAt) {
		t.Fatalf("terminal status should record completion at %v", resolvedAt)
	}

	clock.OnStatusChanged(inst, domain.TicketStatusResolved, domain.TicketStatusClosed, resolvedAt.Add(time.Hour))
	if !inst.CompletedAt.Equal(resolvedAt) {
		t.Fatalf("completion must not move on later terminal transitions")
	}
}

func TestRecordFirstResponseSetOnce(t *testing.T) {
	clock := NewClock(0.8, zap.NewNop())
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)

	first := created.Add(30 * time.Minute)
	clock.RecordFirstResponse(inst, first)
	clock.RecordFirstResponse(inst, first.Add(time.Hour))
	if !inst.FirstResponseAt.Equal(first) {
		t.Fatalf("first response timestamp must not move, got %v", inst.FirstResponseAt)
	}
}

func TestCheckThresholdsAtRiskFiresOnce(t *testing.T) {
	clock := NewClock(0.8, zap.NewNop())
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)

	// 90% of the 4h first-response budget elapsed, resolution still early.
	now := created.Add(3*time.Hour + 36*time.Minute)
	crossings := clock.CheckThresholds(inst, now)
	if len(crossings) != 1 {
		t.Fatalf("got %d crossings, want 1", len(crossings))
	}
	if crossings[0].Kind != domain.ThresholdAtRisk || crossings[0].SubClock != domain.SubClockFirstResponse {
		t.Fatalf("unexpected crossing %+v", crossings[0])
	}

	if again := clock.CheckThresholds(inst, now.Add(time.Minute)); len(again) != 0 {
		t.Fatalf("repeated check should be a no-op, got %v", again)
	}
}

func TestCheckThresholdsBreach(t *testing.T) {
	clock := NewClock(0.8, zap.NewNop())
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)

	now := created.Add(25 * time.Hour)
	crossings := clock.CheckThresholds(inst, now)
	if len(crossings) != 2 {
		t.Fatalf("both sub-clocks past due should breach, got %v", crossings)
	}
	for _, crossing := range crossings {
		if crossing.Kind != domain.ThresholdBreached {
			t.Fatalf("expected breach, got %+v", crossing)
		}
	}

	if again := clock.CheckThresholds(inst, now.Add(time.Hour)); len(again) != 0 {
		t.Fatalf("breach markers should suppress repeats, got %v", again)
	}
}

func TestCheckThresholdsSkipsMetAndPausedClocks(t *testing.T) {
	clock := NewClock(0.8, zap.NewNop())
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(testPolicy(false), nil, "t-1", created)

	clock.RecordFirstResponse(inst, created.Add(time.Hour))
	clock.OnStatusChanged(inst, domain.TicketStatusOpen, domain.TicketStatusWaitingOnVendor, created.Add(2*time.Hour))

	// Far past both due dates, but first response is met and resolution
	// is paused.
	if crossings := clock.CheckThresholds(inst, created.Add(48*time.Hour)); len(crossings) != 0 {
		t.Fatalf("met and paused clocks should produce nothing, got %v", crossings)
	}
}
