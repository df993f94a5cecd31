package monitoring

import (
	"sync"
)

// Operations recorded by the library
const (
	OpGroupModify = "GroupModify"
	OpBindRows    = "BindRows"
	OpCollect     = "Collect"
)

//nolint:gochecknoglobals // Required for singleton pattern in monitoring system
var (
	globalCollector *MetricsCollector
	globalMutex     sync.RWMutex
)

// SetGlobalCollector sets the global metrics collector.
func SetGlobalCollector(collector *MetricsCollector) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalCollector = collector
}

// GetGlobalCollector returns the global metrics collector.
// Returns nil if no global collector has been set.
func GetGlobalCollector() *MetricsCollector {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return globalCollector
}

// RecordGlobal runs fn, which reports the rows it produced, and records it on
// the global collector when one is set.
func RecordGlobal(operation string, parallel bool, fn func() (int, error)) error {
	collector := GetGlobalCollector()
	if collector == nil {
		_, err := fn()
		return err
	}
	return collector.Record(operation, parallel, fn)
}

// IsGlobalMonitoringEnabled returns true if global monitoring is enabled.
func IsGlobalMonitoringEnabled() bool {
	collector := GetGlobalCollector()
	return collector != nil && collector.IsEnabled()
}

// EnableGlobalMonitoring creates and sets a global metrics collector if none
// is enabled yet, and returns it.
func EnableGlobalMonitoring() *MetricsCollector {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalCollector == nil {
		globalCollector = NewMetricsCollector(true)
	}
	globalCollector.SetEnabled(true)
	return globalCollector
}

// DisableGlobalMonitoring disables the global metrics collector.
func DisableGlobalMonitoring() {
	collector := GetGlobalCollector()
	if collector != nil {
		collector.SetEnabled(false)
	}
}

// GlobalMetrics returns the operations recorded so far, oldest first.
func GlobalMetrics() []OperationMetrics {
	collector := GetGlobalCollector()
	if collector == nil {
		return nil
	}
	return collector.GetMetrics()
}

// GetGlobalSummary returns a summary from the global collector.
func GetGlobalSummary() MetricsSummary {
	collector := GetGlobalCollector()
	if collector == nil {
		return MetricsSummary{}
	}
	return collector.GetSummary()
}
