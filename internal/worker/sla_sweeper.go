package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepRunner is the SLA threshold sweep entry point.
type SweepRunner interface {
	RunSweep(ctx context.Context) error
}

// StartSlaSweeper schedules the periodic SLA threshold sweep. Returns the
// scheduler so the caller can stop it on shutdown.
func StartSlaSweeper(spec string, runner SweepRunner, logger *zap.Logger) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		if err := runner.RunSweep(context.Background()); err != nil {
			logger.Error("sla sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	logger.Info("sla sweeper started", zap.String("spec", spec))
	return scheduler, nil
}
