package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/config"
	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/observability"
)

// AutomationDispatcher routes submissions to the durable queue while the
// broker is reachable and falls back to synchronous inline execution once
// the reconnect budget is exhausted. The degraded transition is one-way
// for the lifetime of the process: predictability over self-healing.
type AutomationDispatcher struct {
	queue   *TaskQueue
	runner  Runner
	mode    *modeState
	metrics *observability.Metrics
	logger  *zap.Logger

	// reconnect bookkeeping, serialized so broker probes cannot storm.
	mu              sync.Mutex
	brokerFailures  int
	connectAttempts int
}

// NewAutomationDispatcher constructs the dispatcher. It probes the broker
// once; when the connection cannot be established at all it starts
// degraded immediately.
func NewAutomationDispatcher(queue *TaskQueue, runner Runner, cfg config.QueueConfig, metrics *observability.Metrics, logger *zap.Logger) *AutomationDispatcher {
	d := &AutomationDispatcher{
		queue:           queue,
		runner:          runner,
		mode:            &modeState{},
		metrics:         metrics,
		logger:          logger,
		connectAttempts: cfg.ConnectAttempts,
	}
	if d.connectAttempts <= 0 {
		d.connectAttempts = 5
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := queue.Ping(ctx); err != nil {
		logger.Warn("automation queue broker unreachable at startup", zap.Error(err))
		d.noteBrokerFailure(err)
	}
	return d
}

// Mode returns the current execution mode.
func (d *AutomationDispatcher) Mode() Mode {
	return d.mode.Current()
}

// Submit accepts one (ticket, trigger) unit of work. On the enabled path
// it enqueues durably and returns; on the degraded path, or when an
// enqueue fails, it executes inline in the caller's context. Inline
// failures are caught and logged, never retried and never returned: the
// caller's contract is fire-and-forget.
func (d *AutomationDispatcher) Submit(ctx context.Context, ticketID string, trigger domain.TriggerType) error {
	if d.mode.Current() == ModeDegraded {
		d.runInline(ctx, ticketID, trigger)
		return nil
	}

	task := Task{
		ID:         uuid.NewString(),
		TicketID:   ticketID,
		Trigger:    trigger,
		EnqueuedAt: time.Now(),
	}
	if err := d.queue.Enqueue(ctx, task); err != nil {
		d.logger.Warn("enqueue failed, executing inline",
			zap.String("ticket_id", ticketID),
			zap.String("trigger", string(trigger)),
			zap.Error(err))
		d.noteBrokerFailure(err)
		d.runInline(ctx, ticketID, trigger)
		return nil
	}

	d.resetBrokerFailures()
	return nil
}

func (d *AutomationDispatcher) runInline(ctx context.Context, ticketID string, trigger domain.TriggerType) {
	d.metrics.RecordInlineRun()
	if err := d.runner.Run(ctx, ticketID, trigger); err != nil {
		d.logger.Error("inline automation run failed",
			zap.String("ticket_id", ticketID),
			zap.String("trigger", string(trigger)),
			zap.Error(err))
	}
}

// noteBrokerFailure counts consecutive broker errors; crossing the
// reconnect budget flips the dispatcher to degraded permanently.
func (d *AutomationDispatcher) noteBrokerFailure(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brokerFailures++
	if d.brokerFailures >= d.connectAttempts {
		if d.mode.Degrade() {
			d.logger.Error("broker reconnect budget exhausted, automation dispatcher degraded to inline execution",
				zap.Int("attempts", d.brokerFailures),
				zap.Error(err))
		}
	}
}

func (d *AutomationDispatcher) resetBrokerFailures() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brokerFailures = 0
}
