// Package monitoring provides performance monitoring and metrics collection for DataFrame operations.
package monitoring

import (
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics represents performance metrics for a single DataFrame operation.
type OperationMetrics struct {
	Duration      time.Duration `json:"duration"`
	RowsProcessed int64         `json:"rows_processed"`
	MemoryUsed    int64         `json:"memory_used"`
	Operation     string        `json:"operation"`
	Parallel      bool          `json:"parallel"`
	Failed        bool          `json:"failed"`
}

// MetricsCollector collects and stores performance metrics for DataFrame
// operations. Every record is also exported to a private prometheus registry.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetrics
	enabled bool

	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	registry := prometheus.NewRegistry()

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rframe_operation_duration_seconds",
			Help:    "Duration of DataFrame operations",
			Buckets: []float64{1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1, 10},
		},
		[]string{"operation", "parallel", "status"},
	)
	rows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rframe_rows_processed_total",
			Help: "Total number of rows produced by DataFrame operations",
		},
		[]string{"operation"},
	)
	registry.MustRegister(duration, rows)

	return &MetricsCollector{
		metrics:  make([]OperationMetrics, 0),
		enabled:  enabled,
		registry: registry,
		duration: duration,
		rows:     rows,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// Registry returns the prometheus registry holding the exported metrics.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// RecordOperation executes the given function and records performance metrics.
func (mc *MetricsCollector) RecordOperation(operation string, fn func() error) error {
	return mc.Record(operation, false, func() (int, error) {
		return 0, fn()
	})
}

// Record executes fn, which reports the number of rows it produced, and
// records its duration, row count and approximate memory use.
func (mc *MetricsCollector) Record(operation string, parallel bool, fn func() (int, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	rows, err := fn()
	duration := time.Since(start)

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)
	memoryUsed := int64(memAfter.TotalAlloc - memBefore.TotalAlloc) //nolint:gosec // monotonic counter

	status := "success"
	if err != nil {
		status = "failure"
	}
	mc.duration.WithLabelValues(operation, strconv.FormatBool(parallel), status).Observe(duration.Seconds())
	if err == nil {
		mc.rows.WithLabelValues(operation).Add(float64(rows))
	}

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, OperationMetrics{
		Duration:      duration,
		RowsProcessed: int64(rows),
		MemoryUsed:    memoryUsed,
		Operation:     operation,
		Parallel:      parallel,
		Failed:        err != nil,
	})
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]OperationMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics. Prometheus counters are not reset.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var totalDuration time.Duration
	var totalMemory int64
	var totalRows int64
	var failures int
	operationCounts := make(map[string]int)

	for _, metric := range mc.metrics {
		totalDuration += metric.Duration
		totalMemory += metric.MemoryUsed
		totalRows += metric.RowsProcessed
		operationCounts[metric.Operation]++
		if metric.Failed {
			failures++
		}
	}

	return MetricsSummary{
		TotalOperations: len(mc.metrics),
		TotalDuration:   totalDuration,
		TotalMemory:     totalMemory,
		TotalRows:       totalRows,
		Failures:        failures,
		OperationCounts: operationCounts,
		AverageDuration: totalDuration / time.Duration(len(mc.metrics)),
	}
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations int            `json:"total_operations"`
	TotalDuration   time.Duration  `json:"total_duration"`
	TotalMemory     int64          `json:"total_memory"`
	TotalRows       int64          `json:"total_rows"`
	Failures        int            `json:"failures"`
	OperationCounts map[string]int `json:"operation_counts"`
	AverageDuration time.Duration  `json:"average_duration"`
}
