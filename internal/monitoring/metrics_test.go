//nolint:testpackage // requires internal access to unexported fields
package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	t.Run("create disabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(false)
		assert.NotNil(t, collector)
		assert.False(t, collector.IsEnabled())
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record operation with disabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(false)

		callCount := 0
		err := collector.RecordOperation("test", func() error {
			callCount++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, callCount)
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record rows with enabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(true)

		err := collector.Record("GroupModify", true, func() (int, error) {
			return 42, nil
		})
		require.NoError(t, err)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.Equal(t, "GroupModify", metrics[0].Operation)
		assert.Equal(t, int64(42), metrics[0].RowsProcessed)
		assert.True(t, metrics[0].Parallel)
		assert.False(t, metrics[0].Failed)

		assert.InDelta(t, 42.0, testutil.ToFloat64(collector.rows.WithLabelValues("GroupModify")), 0.0001)
	})

	t.Run("failed operations keep the error", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		boom := errors.New("boom")

		err := collector.Record("BindRows", false, func() (int, error) {
			return 3, boom
		})
		require.ErrorIs(t, err, boom)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.True(t, metrics[0].Failed)
		assert.InDelta(t, 0.0, testutil.ToFloat64(collector.rows.WithLabelValues("BindRows")), 0.0001)
	})

	t.Run("clear and summary", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		for i := 0; i < 3; i++ {
			require.NoError(t, collector.Record("Collect", false, func() (int, error) { return 10, nil }))
		}
		require.Error(t, collector.RecordOperation("Collect", func() error { return errors.New("x") }))

		summary := collector.GetSummary()
		assert.Equal(t, 4, summary.TotalOperations)
		assert.Equal(t, int64(30), summary.TotalRows)
		assert.Equal(t, 1, summary.Failures)
		assert.Equal(t, 4, summary.OperationCounts["Collect"])

		collector.Clear()
		assert.Empty(t, collector.GetMetrics())
		assert.Equal(t, MetricsSummary{}, collector.GetSummary())
	})
}

func TestRegistryGathers(t *testing.T) {
	collector := NewMetricsCollector(true)
	require.NoError(t, collector.Record("BindRows", false, func() (int, error) { return 1, nil }))

	families, err := collector.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "rframe_operation_duration_seconds")
	assert.Contains(t, names, "rframe_rows_processed_total")
}
