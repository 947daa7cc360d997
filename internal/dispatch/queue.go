package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TaskQueue is the durable queue backing the dispatcher's enabled path.
// Implemented on Redis: a ready list, a delayed zset scored by ready time
// for backoff retries, and a capped failed list for inspection.
type TaskQueue struct {
	client    *redis.Client
	ready     string
	delayed   string
	failed    string
	retention int
}

// NewTaskQueue builds a queue over the given client. keyPrefix namespaces
// the Redis keys; retention caps the failed-task list length.
func NewTaskQueue(client *redis.Client, keyPrefix string, retention int) *TaskQueue {
	return &TaskQueue{
		client:    client,
		ready:     keyPrefix + ":tasks",
		delayed:   keyPrefix + ":tasks:delayed",
		failed:    keyPrefix + ":tasks:failed",
		retention: retention,
	}
}

// Ping verifies broker connectivity.
func (q *TaskQueue) Ping(ctx context.Context) error {
	if q.client == nil {
		return errors.New("queue client not configured")
	}
	return q.client.Ping(ctx).Err()
}

// Enqueue pushes a task onto the ready list.
func (q *TaskQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return q.client.LPush(ctx, q.ready, payload).Err()
}

// EnqueueDelayed schedules a task to become ready at readyAt.
func (q *TaskQueue) EnqueueDelayed(ctx context.Context, task Task, readyAt time.Time) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return q.client.ZAdd(ctx, q.delayed, redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: payload,
	}).Err()
}

// Dequeue blocks up to timeout for the next ready task. Returns nil with
// no error when the wait timed out.
func (q *TaskQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	result, err := q.client.BRPop(ctx, timeout, q.ready).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BRPop returns [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply of length %d", len(result))
	}
	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}
	return &task, nil
}

// PromoteDue moves delayed tasks whose ready time has passed onto the
// ready list. Returns the number promoted.
func (q *TaskQueue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	max := strconv.FormatInt(now.UnixMilli(), 10)
	members, err := q.client.ZRangeByScore(ctx, q.delayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, err
	}
	promoted := 0
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, q.delayed, member).Result()
		if err != nil {
			return promoted, err
		}
		// Another promoter won the race for this member.
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.ready, member).Err(); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// RecordFailure appends a task that exhausted its retry budget to the
// failed list, trimmed to the retention cap.
func (q *TaskQueue) RecordFailure(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, q.failed, payload)
	if q.retention > 0 {
		pipe.LTrim(ctx, q.failed, 0, int64(q.retention-1))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListFailed returns up to limit of the most recent failed tasks.
func (q *TaskQueue) ListFailed(ctx context.Context, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 100
	}
	entries, err := q.client.LRange(ctx, q.failed, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(entries))
	for _, entry := range entries {
		var task Task
		if err := json.Unmarshal([]byte(entry), &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
