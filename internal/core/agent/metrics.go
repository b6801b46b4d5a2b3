package agent

import (
	"sync"
	"time"
)

// Metrics collects loop-level measurements for monitoring and observability.
type Metrics interface {
	// RecordAPICall records one chat completion request with duration and
	// success status.
	RecordAPICall(duration time.Duration, success bool)
	// RecordToolExecution records one tool invocation by name.
	RecordToolExecution(tool string, duration time.Duration, success bool)
	// RecordTokenUsage accumulates the usage block from a completion.
	RecordTokenUsage(usage TokenUsage)
	// Snapshot returns the current point-in-time view.
	Snapshot() MetricsSnapshot
	// Reset clears all collected values.
	Reset()
}

// CallStats tracks count and timing statistics for one class of call.
type CallStats struct {
	Total     int64
	Success   int64
	Failed    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// MetricsSnapshot is a copy of all collected metrics.
type MetricsSnapshot struct {
	APICalls        CallStats
	ToolExecutions  map[string]CallStats
	Tokens          TokenUsage
	LastAPICallTime time.Time
}

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

func (n *NoOpMetrics) RecordAPICall(_ time.Duration, _ bool)                  {}
func (n *NoOpMetrics) RecordToolExecution(_ string, _ time.Duration, _ bool)  {}
func (n *NoOpMetrics) RecordTokenUsage(_ TokenUsage)                          {}
func (n *NoOpMetrics) Snapshot() MetricsSnapshot                              { return MetricsSnapshot{} }
func (n *NoOpMetrics) Reset()                                                 {}

// InMemoryMetrics is a thread-safe in-memory collector.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	apiCalls CallStats
	tools    map[string]CallStats
	tokens   TokenUsage
	lastCall time.Time
}

// NewInMemoryMetrics creates an empty in-memory collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{tools: make(map[string]CallStats)}
}

func record(stats *CallStats, duration time.Duration, success bool) {
	stats.Total++
	if success {
		stats.Success++
	} else {
		stats.Failed++
	}
	stats.TotalTime += duration
	if stats.MinTime == 0 || duration < stats.MinTime {
		stats.MinTime = duration
	}
	if duration > stats.MaxTime {
		stats.MaxTime = duration
	}
}

func (m *InMemoryMetrics) RecordAPICall(duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record(&m.apiCalls, duration, success)
	m.lastCall = time.Now()
}

func (m *InMemoryMetrics) RecordToolExecution(tool string, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.tools[tool]
	record(&stats, duration, success)
	m.tools[tool] = stats
}

func (m *InMemoryMetrics) RecordTokenUsage(usage TokenUsage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens.PromptTokens += usage.PromptTokens
	m.tokens.CompletionTokens += usage.CompletionTokens
	m.tokens.TotalTokens += usage.TotalTokens
}

func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		APICalls:        m.apiCalls,
		ToolExecutions:  make(map[string]CallStats, len(m.tools)),
		Tokens:          m.tokens,
		LastAPICallTime: m.lastCall,
	}
	for name, stats := range m.tools {
		snapshot.ToolExecutions[name] = stats
	}
	return snapshot
}

func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCalls = CallStats{}
	m.tools = make(map[string]CallStats)
	m.tokens = TokenUsage{}
	m.lastCall = time.Time{}
}
