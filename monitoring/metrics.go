package monitoring

import (
	"runtime"
	"sync"
	"time"
)

// InferenceStats 推理统计快照
type InferenceStats struct {
	Requests     int64         `json:"requests"`
	InputErrors  int64         `json:"input_errors"`
	ModelErrors  int64         `json:"model_errors"`
	AvgLatencyMs float64       `json:"avg_latency_ms"`
	MaxLatencyMs float64       `json:"max_latency_ms"`
	Uptime       time.Duration `json:"uptime"`
	Goroutines   int           `json:"goroutines"`
	StartTime    time.Time     `json:"start_time"`
}

// InferenceMetrics 推理指标收集器
type InferenceMetrics struct {
	mu sync.RWMutex

	requests    int64
	inputErrors int64
	modelErrors int64

	latencySum time.Duration
	latencyMax time.Duration

	startTime time.Time
}

// NewInferenceMetrics 创建指标收集器
func NewInferenceMetrics() *InferenceMetrics {
	return &InferenceMetrics{startTime: time.Now()}
}

// RecordRequest 记录一次成功推理及其耗时
func (m *InferenceMetrics) RecordRequest(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	m.latencySum += latency
	if latency > m.latencyMax {
		m.latencyMax = latency
	}
}

// RecordInputError 记录一次输入错误
func (m *InferenceMetrics) RecordInputError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputErrors++
}

// RecordModelError 记录一次推理失败
func (m *InferenceMetrics) RecordModelError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelErrors++
}

// Snapshot 返回当前统计快照
func (m *InferenceMetrics) Snapshot() InferenceStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := InferenceStats{
		Requests:    m.requests,
		InputErrors: m.inputErrors,
		ModelErrors: m.modelErrors,
		Uptime:      time.Since(m.startTime),
		Goroutines:  runtime.NumGoroutine(),
		StartTime:   m.startTime,
	}
	if m.requests > 0 {
		stats.AvgLatencyMs = float64(m.latencySum.Microseconds()) / float64(m.requests) / 1000
	}
	stats.MaxLatencyMs = float64(m.latencyMax.Microseconds()) / 1000
	return stats
}
