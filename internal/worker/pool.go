package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-automation/internal/config"
	"github.com/spec-kit/helpdesk-automation/internal/dispatch"
	"github.com/spec-kit/helpdesk-automation/internal/events"
	"github.com/spec-kit/helpdesk-automation/internal/observability"
)

const (
	dequeueWait     = 2 * time.Second
	promoteInterval = time.Second
)

// taskQueue is the slice of dispatch.TaskQueue the pool drives. Tests
// substitute fakes.
type taskQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*dispatch.Task, error)
	EnqueueDelayed(ctx context.Context, task dispatch.Task, readyAt time.Time) error
	RecordFailure(ctx context.Context, task dispatch.Task) error
	PromoteDue(ctx context.Context, now time.Time) (int, error)
}

// Pool drains the automation task queue with bounded concurrency. Failed
// tasks are re-enqueued with exponential backoff until the attempt budget
// is spent, then recorded on the failed list and announced on the event
// bus.
type Pool struct {
	queue       taskQueue
	runner      dispatch.Runner
	events      events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	concurrency int
	maxAttempts int
	baseBackoff time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewPool constructs a worker pool.
func NewPool(queue taskQueue, runner dispatch.Runner, cfg config.QueueConfig, bus events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *Pool {
	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Pool{
		queue:       queue,
		runner:      runner,
		events:      bus,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		baseBackoff: cfg.BaseBackoff(),
	}
}

// Start launches the workers and the delayed-task promoter.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx)
	}
	p.wg.Add(1)
	go p.promoterLoop(ctx)

	p.logger.Info("automation worker pool started", zap.Int("concurrency", p.concurrency))
}

// Stop cancels the workers and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) workerLoop(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := p.queue.Dequeue(ctx, dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue failed", zap.Error(err))
			// Back off briefly so a dead broker does not spin the loop.
			select {
			case <-time.After(dequeueWait):
			case <-ctx.Done():
				return
			}
			continue
		}
		if task == nil {
			continue
		}
		p.process(ctx, *task)
	}
}

func (p *Pool) process(ctx context.Context, task dispatch.Task) {
	err := p.runner.Run(ctx, task.TicketID, task.Trigger)
	if err == nil {
		return
	}

	task.Attempts++
	task.LastError = err.Error()
	p.logger.Warn("automation task failed",
		zap.String("task_id", task.ID),
		zap.String("ticket_id", task.TicketID),
		zap.String("trigger", string(task.Trigger)),
		zap.Int("attempts", task.Attempts),
		zap.Error(err))

	if task.Attempts >= p.maxAttempts {
		p.metrics.RecordQueueFailure()
		if recordErr := p.queue.RecordFailure(ctx, task); recordErr != nil {
			p.logger.Error("failed-task record write failed", zap.String("task_id", task.ID), zap.Error(recordErr))
		}
		if p.events != nil {
			_ = p.events.Publish(ctx, events.Event{
				Type:     events.EventAutomationFailed,
				TicketID: task.TicketID,
				Payload: events.AutomationFailedPayload{
					TaskID:   task.ID,
					Trigger:  task.Trigger,
					Attempts: task.Attempts,
					Error:    task.LastError,
				},
			})
		}
		return
	}

	p.metrics.RecordQueueRetry()
	delay := p.baseBackoff << (task.Attempts - 1)
	if err := p.queue.EnqueueDelayed(ctx, task, time.Now().Add(delay)); err != nil {
		// The retry could not be scheduled; keep the task inspectable on
		// the failed list instead of dropping it.
		p.logger.Error("retry enqueue failed, recording task as failed",
			zap.String("task_id", task.ID),
			zap.Error(err))
		p.metrics.RecordQueueFailure()
		if recordErr := p.queue.RecordFailure(ctx, task); recordErr != nil {
			p.logger.Error("failed-task record write failed", zap.String("task_id", task.ID), zap.Error(recordErr))
		}
	}
}

func (p *Pool) promoterLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(promoteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := p.queue.PromoteDue(ctx, now); err != nil && ctx.Err() == nil {
				p.logger.Warn("delayed task promotion failed", zap.Error(err))
			}
		}
	}
}
