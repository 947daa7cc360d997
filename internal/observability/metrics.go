package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the engine and its HTTP
// surface. Counters are exposed on the health endpoint; a scraping layer
// is an external concern.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	dispatchCount map[string]int64
	ruleFailures  map[string]int64
	queueRetries  int64
	queueFailed   int64
	inlineRuns    int64
	slaSignals    map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		dispatchCount: make(map[string]int64),
		ruleFailures:  make(map[string]int64),
		slaSignals:    make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordDispatch counts one automation dispatch and its per-rule failures.
func (m *Metrics) RecordDispatch(trigger string, matched, failed int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchCount[trigger]++
	if failed > 0 {
		m.ruleFailures[trigger] += int64(failed)
	}
}

// RecordQueueRetry counts a task re-enqueued for another attempt.
func (m *Metrics) RecordQueueRetry() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueRetries++
}

// RecordQueueFailure counts a task that exhausted its retry budget.
func (m *Metrics) RecordQueueFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueFailed++
}

// RecordInlineRun counts a submission executed on the inline fallback path.
func (m *Metrics) RecordInlineRun() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inlineRuns++
}

// RecordSlaSignal counts one threshold-crossed signal.
func (m *Metrics) RecordSlaSignal(kind, subClock string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slaSignals[kind+"|"+subClock]++
}

// Snapshot returns a copy of all counters for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]any {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]any{
		"requests":      copyCounts(m.requestCount),
		"errors":        copyCounts(m.errorCount),
		"dispatches":    copyCounts(m.dispatchCount),
		"rule_failures": copyCounts(m.ruleFailures),
		"queue_retries": m.queueRetries,
		"queue_failed":  m.queueFailed,
		"inline_runs":   m.inlineRuns,
		"sla_signals":   copyCounts(m.slaSignals),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
