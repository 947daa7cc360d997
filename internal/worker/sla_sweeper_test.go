package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

type noopSweep struct{}

func (noopSweep) RunSweep(ctx context.Context) error { return nil }

func TestStartSlaSweeperRejectsBadSpec(t *testing.T) {
	if _, err := StartSlaSweeper("every now and then", noopSweep{}, zap.NewNop()); err == nil {
		t.Fatalf("invalid cron spec should be rejected")
	}
}

func TestStartSlaSweeperStarts(t *testing.T) {
	scheduler, err := StartSlaSweeper("@every 1h", noopSweep{}, zap.NewNop())
	if err != nil {
		t.Fatalf("StartSlaSweeper() returned %v", err)
	}
	defer scheduler.Stop()

	if len(scheduler.Entries()) != 1 {
		t.Fatalf("expected one scheduled entry, got %d", len(scheduler.Entries()))
	}
}
